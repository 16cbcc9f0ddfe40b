package mcp

var kindEnum = []string{
	"daily", "weekly", "monthly",
	"daily_memo", "weekly_report", "monthly_presentation",
}

// ToolDefinitions returns the MCP tool definitions for the journal server.
func ToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name: "journal_add",
			Description: "Add one record to the journal. " +
				"daily needs a date (YYYY-MM-DD, defaults to today), weekly needs a theme, monthly needs a title. " +
				"Other fields are optional free text.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"kind": {Type: "string", Description: "Record kind", Enum: kindEnum},
					"fields": {Type: "object", Description: "Field name to value, e.g. {\"date\": \"2024-01-01\", \"fact\": \"...\"}. " +
						"daily: date, fact, question, conclusion, next_topic. " +
						"weekly: theme, conclusion, evidence1-3, counter, summary. " +
						"monthly: title, problem, hypothesis, reasoning1-3, counter_reassert, takeaway."},
				},
				Required: []string{"kind", "fields"},
			},
		},
		{
			Name:        "journal_list",
			Description: "List every record of one kind, newest first.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"kind": {Type: "string", Description: "Record kind", Enum: kindEnum},
				},
				Required: []string{"kind"},
			},
		},
		{
			Name:        "journal_stats",
			Description: "Count the records of each kind.",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name: "journal_export",
			Description: "Export the journal. markdown returns the combined document of all kinds; " +
				"csv returns one kind as CSV, oldest first.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"format": {Type: "string", Description: "Export format", Enum: []string{"markdown", "csv"},
						Default: "markdown"},
					"kind": {Type: "string", Description: "Record kind, required for csv", Enum: kindEnum},
				},
			},
		},
	}
}
