package billing

type bracket struct {
	threshold int64
	duty      int64
}

// Lower bounds are inclusive and checked from the top. Everything from
// 50,000 up to 10,000,000 is a flat 200.
var stampDutyBrackets = []bracket{
	{50_000_000, 600},
	{10_000_000, 400},
	{5_000_000, 200},
	{1_000_000, 200},
	{500_000, 200},
	{100_000, 200},
	{50_000, 200},
}

// StampDuty returns the revenue stamp amount in yen for a paper receipt.
func StampDuty(total int64) int64 {
	for _, b := range stampDutyBrackets {
		if total >= b.threshold {
			return b.duty
		}
	}
	return 0
}

func stampDutyFor(total int64, electronic bool) int64 {
	if electronic {
		return 0
	}
	return StampDuty(total)
}
