package reporting

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown_Sections(t *testing.T) {
	md := RenderMarkdown(format(t, false))

	for _, section := range []string{
		"# Order Summary",
		"## Summary Totals",
		"## Profit Summary",
		"## Monthly Summary",
		"## Weekly Summary",
		"## Orders",
	} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "Generated: 2024-06-01T12:00:00Z")
	assert.Contains(t, md, "Last Purchase: 2024-01-10")
	assert.Contains(t, md, "| Total Gross Profit | $50.57 |")
	assert.Contains(t, md, "- Gross Profit Percentage: 16.84%")
	assert.Contains(t, md, "| Jan | 2 | $300.2500 | $50.5679 |")
	assert.Contains(t, md, "| Dec | 0 | $0.0000 | $0.0000 |")
	assert.Contains(t, md, "| 2024-W1 | 1 | N/A |")
	assert.Contains(t, md, "| 1 | 2024-01-05 | Open | $100.0000 | N/A | $12.3457 | N/A | 5.00% | N | N/A |")
	assert.NotContains(t, md, "Skipped malformed records")
}

func TestRenderMarkdown_Empty(t *testing.T) {
	v := format(t, true)
	v.Orders = nil
	v.Weeks = nil
	v.SkippedRecords = 3

	md := RenderMarkdown(v)

	assert.Contains(t, md, "Skipped malformed records: 3")
	assert.Equal(t, 2, strings.Count(md, "No orders."))
}

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(format(t, true))
	require.NoError(t, err)

	tables := strings.Split(out, "\n\n")
	require.Len(t, tables, 2)

	months := strings.Split(strings.TrimSpace(tables[0]), "\n")
	require.Len(t, months, 13)
	assert.Equal(t, "month,transactions,filled_value,profit", months[0])
	assert.Equal(t, "Jan,2,300.3,50.6", months[1])

	orders := strings.Split(strings.TrimSpace(tables[1]), "\n")
	require.Len(t, orders, 3)
	assert.Equal(t, "1,2024-01-05,Open,100.0,N/A,12.3,N/A,5.00,N,N/A", orders[1])
	assert.Equal(t, "2,2024-01-10,2024-01-20,200.3,10,20.0,25.5,4.13,Y,50.6", orders[2])
}

func TestRenderCSV_QuotesFields(t *testing.T) {
	v := format(t, true)
	v.Orders[0].ProfitFlag = "hit, partially"

	out, err := RenderCSV(v)
	require.NoError(t, err)
	assert.Contains(t, out, `"hit, partially"`)
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(format(t, false))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2024-01-10", decoded["last_purchase"])
	assert.Equal(t, "Gross Profit", decoded["profit_label"])
	assert.Len(t, decoded["months"], 12)

	totals, ok := decoded["totals"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "100.00", totals["open_orders_value"])
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         FormatMarkdown,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"csv":      FormatCSV,
		"json":     FormatJSON,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestRender_Dispatch(t *testing.T) {
	v := format(t, false)

	md, err := Render(v, FormatMarkdown)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# Order Summary"))

	csvOut, err := Render(v, FormatCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csvOut), "month,"))

	js, err := Render(v, FormatJSON)
	require.NoError(t, err)
	assert.True(t, json.Valid(js))

	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
}
