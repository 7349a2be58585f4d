package builder

import "github.com/bigricza/ChatLangA2UI-Claude/internal/protocol"

// ErrorSurface builds the fallback UI streamed when generation produced no
// usable output: a titled card explaining the failure. The sequence is always
// well-formed so the client-side renderer stays in a good state.
func ErrorSurface(detail string) []protocol.Message {
	b := New()
	b.AddText("error_title", "Error", "title")
	b.AddCard("error_card", []string{"error_msg"}, "Generation Failed")
	b.AddText("error_msg", "Failed to generate UI: "+detail, "body")
	return b.Build()
}

// SampleDashboard builds the canned sales dashboard served by the test
// endpoint, exercising text, cards, a line chart, and a table with typed
// columns.
func SampleDashboard() []protocol.Message {
	b := New()
	b.AddText("title", "Sales Dashboard", "title")

	b.AddCard("revenue_card", []string{"revenue_chart"}, "Revenue Trend")
	b.AddChart("revenue_chart", "line", "month", "revenue", "/salesData", "")

	b.AddCard("products_card", []string{"products_table"}, "Top Products")
	b.AddTable("products_table", []protocol.TableColumn{
		{Key: "product", Label: "Product", Type: "string"},
		{Key: "sales", Label: "Sales", Type: "number"},
		{Key: "growth", Label: "Growth", Type: "number"},
	}, "/products")

	b.AddData("/salesData", map[string]any{
		"data": []any{
			map[string]any{"month": "Jan", "revenue": 45000},
			map[string]any{"month": "Feb", "revenue": 52000},
			map[string]any{"month": "Mar", "revenue": 48000},
			map[string]any{"month": "Apr", "revenue": 61000},
			map[string]any{"month": "May", "revenue": 58000},
			map[string]any{"month": "Jun", "revenue": 67000},
		},
	})
	b.AddData("/products", map[string]any{
		"data": []any{
			map[string]any{"product": "Widget A", "sales": 1200, "growth": 15.5},
			map[string]any{"product": "Widget B", "sales": 980, "growth": 8.2},
			map[string]any{"product": "Widget C", "sales": 750, "growth": -3.1},
			map[string]any{"product": "Widget D", "sales": 620, "growth": 22.7},
		},
	})

	return b.Build()
}
