package main

import (
	"bytes"
	"receiptd/internal/billing"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newCLI()
	app.Writer = &out
	err := app.Run(append([]string{"receiptd"}, args...))
	return out.String(), err
}

func TestCalc_Exclusive(t *testing.T) {
	out, err := runCLI(t, "calc", "--amount", "60,000", "--electronic=false")
	require.NoError(t, err)

	var figures map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &figures))
	assert.Equal(t, float64(6000), figures["taxAmount"])
	assert.Equal(t, float64(66000), figures["totalWithTax"])
	assert.Equal(t, float64(200), figures["stampDuty"])
}

func TestCalc_Inclusive(t *testing.T) {
	out, err := runCLI(t, "calc", "--amount", "11000", "--mode", "inclusive")
	require.NoError(t, err)

	var figures map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &figures))
	assert.Equal(t, float64(1000), figures["taxAmount"])
	assert.Equal(t, float64(11000), figures["totalWithTax"])
	assert.Equal(t, float64(0), figures["stampDuty"])
}

func TestCalc_UnknownMode(t *testing.T) {
	_, err := runCLI(t, "calc", "--mode", "gross")
	assert.Error(t, err)
}

func TestCalc_InvalidRate(t *testing.T) {
	for _, rate := range []string{"NaN", "Inf", "-0.1", "1.5"} {
		var err error
		require.NotPanics(t, func() { _, err = runCLI(t, "calc", "--amount", "1000", "--rate", rate) })
		assert.ErrorIs(t, err, billing.ErrInvalidTaxRate, "rate %s", rate)
	}
}

func TestServe_MissingConfig(t *testing.T) {
	_, err := runCLI(t, "--config", t.TempDir()+"/missing.yml", "serve")
	assert.Error(t, err)
}
