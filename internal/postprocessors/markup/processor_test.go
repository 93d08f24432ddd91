package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "Question: What is flu?\nAnswer: A viral infection.",
			want: "Question: What is flu?\nAnswer: A viral infection.",
		},
		{
			name: "html paragraphs and entities",
			in:   "<p>Drink fluids &amp; rest.</p><p>See a doctor if fever&nbsp;persists.</p>",
			want: "Drink fluids & rest.\n\nSee a doctor if fever persists.",
		},
		{
			name: "script removed",
			in:   "Take <b>paracetamol</b><script>alert(1)</script>.",
			want: "Take paracetamol.",
		},
		{
			name: "line breaks",
			in:   "Dose:<br/>500mg<br>twice daily",
			want: "Dose:\n500mg\ntwice daily",
		},
		{
			name: "comparison is not a tag",
			in:   "Keep systolic pressure < 120 mmHg.",
			want: "Keep systolic pressure < 120 mmHg.",
		},
		{
			name: "markdown links and emphasis",
			in:   "See [the CDC](https://cdc.gov) for **current** guidance on *flu* shots.",
			want: "See the CDC for current guidance on flu shots.",
		},
		{
			name: "adjacent italics",
			in:   "*one* *two*",
			want: "one two",
		},
		{
			name: "headings and quotes",
			in:   "## Symptoms\n> Fever and cough",
			want: "Symptoms\nFever and cough",
		},
		{
			name: "bullets kept",
			in:   "* fever\n* cough",
			want: "* fever\n* cough",
		},
		{
			name: "snake case kept",
			in:   "Use the dose_table value.",
			want: "Use the dose_table value.",
		},
		{
			name: "code fences dropped",
			in:   "```\nnot code really\n```",
			want: "not code really",
		},
		{
			name: "whitespace collapsed",
			in:   "  a   b \n\n\n\n c  ",
			want: "a b\n\nc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestProcessor_Process(t *testing.T) {
	p := New()
	assert.Equal(t, "markup", p.Name())

	docs := []domain.Document{
		{Text: "<p>Question: Flu?</p>", SourceID: "FAQ-1"},
		{Text: "<div> </div>", SourceID: "FAQ-2"},
		{Text: "**Answer**: rest", SourceID: "FAQ-3"},
	}

	got := p.Process(docs)

	require.Len(t, got, 2)
	assert.Equal(t, domain.Document{Text: "Question: Flu?", SourceID: "FAQ-1"}, got[0])
	assert.Equal(t, domain.Document{Text: "Answer: rest", SourceID: "FAQ-3"}, got[1])
	assert.Equal(t, "<p>Question: Flu?</p>", docs[0].Text)
}

func TestProcessor_Process_Empty(t *testing.T) {
	got := New().Process(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
