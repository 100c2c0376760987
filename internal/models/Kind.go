package models

// Kind names a persisted collection. The value doubles as its storage key.
type Kind string

const (
	KindIssuers Kind = "issuers"
	KindHistory Kind = "receiptHistory"
)

func (k Kind) Key() string {
	return string(k)
}

func Kinds() []Kind {
	return []Kind{KindIssuers, KindHistory}
}
