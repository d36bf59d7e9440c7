package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Column and table names shared by the repositories.
const (
	sessionEventsTable = "session_events"
	stepEventsTable    = "step_events"
	llmEventsTable     = "llm_request_events"
)

// textSize makes string columns TEXT rather than VARCHAR(255).
const textSize = 2147483647

var (
	// SessionEventsColumns holds the columns for the "session_events" table.
	SessionEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "action", Type: field.TypeString},
		{Name: "start_url", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "success", Type: field.TypeBool, Default: false},
		{Name: "steps", Type: field.TypeInt, Default: 0},
		{Name: "correct_steps", Type: field.TypeInt, Default: 0},
		{Name: "elapsed_ms", Type: field.TypeInt64, Default: 0},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
	}
	// SessionEventsTable holds the schema information for the "session_events" table.
	SessionEventsTable = &schema.Table{
		Name:       sessionEventsTable,
		Columns:    SessionEventsColumns,
		PrimaryKey: []*schema.Column{SessionEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessionevent_session_id", Columns: []*schema.Column{SessionEventsColumns[3]}},
		},
	}

	// StepEventsColumns holds the columns for the "step_events" table.
	StepEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "step_index", Type: field.TypeInt},
		{Name: "url", Type: field.TypeString, Size: textSize},
		{Name: "kind", Type: field.TypeString},
		{Name: "answer", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "verdict", Type: field.TypeString},
		{Name: "next_url", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "reason", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "attempts", Type: field.TypeInt, Default: 0},
		{Name: "error_detail", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "elapsed_ms", Type: field.TypeInt64, Default: 0},
	}
	// StepEventsTable holds the schema information for the "step_events" table.
	StepEventsTable = &schema.Table{
		Name:       stepEventsTable,
		Columns:    StepEventsColumns,
		PrimaryKey: []*schema.Column{StepEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "stepevent_session_id", Columns: []*schema.Column{StepEventsColumns[3]}},
		},
	}

	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	// LLMRequestEventsTable holds the schema information for the "llm_request_events" table.
	LLMRequestEventsTable = &schema.Table{
		Name:       llmEventsTable,
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
	}

	// Tables holds all the tables in the journal schema.
	Tables = []*schema.Table{
		SessionEventsTable,
		StepEventsTable,
		LLMRequestEventsTable,
	}
)
