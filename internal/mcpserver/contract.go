package mcpserver

// LedgerFormatContract describes how moods are recorded and stored, for
// LLM consumers deciding which tool to call.
const LedgerFormatContract = `# Moodlog Ledger Format

The ledger holds at most one mood per calendar day.

## Entry

` + "```" + `json
{
  "date": "2024-01-01",
  "emoji": "😊",
  "mood": "Happy",
  "timestamp": "2024-01-01T10:00:00.000Z"
}
` + "```" + `

- ` + "`" + `date` + "`" + ` is the local day the mood was recorded, as YYYY-MM-DD.
- ` + "`" + `emoji` + "`" + ` is one of the moods returned by ` + "`" + `list_moods` + "`" + `.
- ` + "`" + `mood` + "`" + ` is the label of the emoji at the time of recording.
- ` + "`" + `timestamp` + "`" + ` is the UTC instant of recording.

## Rules

1. Only today's mood can be recorded (` + "`" + `record_mood` + "`" + `).
   Recording again on the same day replaces the earlier entry.
2. Entries are never deleted.
3. An emoji outside the mood set is stored with an empty label.
4. Calendar events (` + "`" + `calendar_events` + "`" + `) mirror entries one to one:
   ` + "`" + `title` + "`" + ` is the emoji, ` + "`" + `start` + "`" + ` the date, and every event is all-day.
`
