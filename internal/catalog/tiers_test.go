package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"12345678", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.input), "input %q", tt.input)
	}
}

func TestParseDetailLevel(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback DetailLevel
		want     DetailLevel
		wantErr  bool
	}{
		{name: "empty uses fallback", raw: "", fallback: DetailName, want: DetailName},
		{name: "empty uses description fallback", raw: "", fallback: DetailDescription, want: DetailDescription},
		{name: "explicit name", raw: "name", fallback: DetailFull, want: DetailName},
		{name: "explicit description", raw: "description", fallback: DetailName, want: DetailDescription},
		{name: "explicit full", raw: "full", fallback: DetailName, want: DetailFull},
		{name: "invalid", raw: "verbose", fallback: DetailName, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseDetailLevel(tt.raw, tt.fallback)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

// TestViewTiersNest verifies that each tier carries everything the tier
// below it carries, and nothing from the tier above.
func TestViewTiersNest(t *testing.T) {
	d := ToolDescriptor{
		Server:      "github",
		Name:        "create_issue",
		Description: "Create an issue.",
		Signature:   "export async function createIssue(input: CreateIssueInput): Promise<unknown>",
		Source:      "// full source here",
	}

	name := d.View(DetailName)
	assert.Equal(t, "github", name.Server)
	assert.Equal(t, "create_issue", name.Name)
	assert.Empty(t, name.Description)
	assert.Empty(t, name.Signature)
	assert.Empty(t, name.Source)

	description := d.View(DetailDescription)
	assert.Equal(t, name.Server, description.Server)
	assert.Equal(t, name.Name, description.Name)
	assert.Equal(t, d.Description, description.Description)
	assert.Equal(t, d.Signature, description.Signature)
	assert.Empty(t, description.Source)

	full := d.View(DetailFull)
	assert.Equal(t, description.Description, full.Description)
	assert.Equal(t, description.Signature, full.Signature)
	assert.Equal(t, d.Source, full.Source)
}

func TestComputeSavings(t *testing.T) {
	descriptors := []ToolDescriptor{
		{
			Server:      "github",
			Name:        "create_issue",
			Description: "Create an issue in a repository with title and body.",
			Signature:   "export async function createIssue(input: CreateIssueInput): Promise<unknown>",
			Source:      "// generated\nexport async function createIssue(input: CreateIssueInput): Promise<unknown> {\n  return callTool(\"github\", \"create_issue\", input);\n}\n",
		},
		{
			Server:      "github",
			Name:        "list_issues",
			Description: "List the open issues of a repository.",
			Signature:   "export async function listIssues(input: ListIssuesInput): Promise<unknown>",
			Source:      "// generated\nexport async function listIssues(input: ListIssuesInput): Promise<unknown> {\n  return callTool(\"github\", \"list_issues\", input);\n}\n",
		},
	}

	savings := ComputeSavings(descriptors, DetailName)
	assert.Equal(t, "name", savings.CurrentLevel)

	// Tier costs grow strictly with tier content.
	assert.Greater(t, savings.Description, savings.Name)
	assert.Greater(t, savings.Full, savings.Description)

	wantRatio := 1 - float64(savings.Name)/float64(savings.Full)
	assert.InDelta(t, wantRatio, savings.SavingsVsFull, 1e-9)
	assert.Greater(t, savings.SavingsVsFull, 0.0)
	assert.Less(t, savings.SavingsVsFull, 1.0)
}

func TestComputeSavingsFullTier(t *testing.T) {
	descriptors := []ToolDescriptor{{Server: "s", Name: "t", Source: "source"}}

	savings := ComputeSavings(descriptors, DetailFull)
	assert.Equal(t, "full", savings.CurrentLevel)
	assert.Zero(t, savings.SavingsVsFull)
}

func TestComputeSavingsEmptyResultSet(t *testing.T) {
	savings := ComputeSavings(nil, DetailName)
	assert.Equal(t, "name", savings.CurrentLevel)
	assert.Zero(t, savings.SavingsVsFull)
}
