package presenter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/riskboard/riskboard/metrics"
	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{input: "table", want: TableFormat},
		{input: "JSON", want: JSONFormat},
		{input: " csv ", want: CSVFormat},
		{input: "cyclonedx", want: UnknownFormat},
		{input: "", want: UnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFormat(tt.input))
		})
	}
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "json", JSONFormat.String())
	assert.Equal(t, "UnknownFormat", Format(42).String())
	assert.Equal(t, []string{"table", "json", "csv"}, FormatNames())
}

func TestPresenterSelection(t *testing.T) {
	page := store.FindingPage{Items: []model.Finding{{ID: "f-1", Title: "x"}}, Total: 1}

	for _, f := range Formats {
		p, err := ForFindings(f, page)
		require.NoError(t, err, f.String())
		var buf bytes.Buffer
		require.NoError(t, p.Present(&buf))
		assert.Contains(t, buf.String(), "f-1")

		_, err = ForSummary(f, metrics.Summary{})
		require.NoError(t, err)
	}

	_, err := ForFindings(UnknownFormat, page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, json, csv")

	_, err = ForAssets(CSVFormat, nil)
	require.Error(t, err)
	_, err = ForActivity(CSVFormat, nil)
	require.Error(t, err)
}
