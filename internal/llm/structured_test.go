package llm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scorePayload struct {
	OverallScore int     `json:"overallScore"`
	Fluency      float64 `json:"fluency"`
}

func TestExtractJSON_CleanJSON(t *testing.T) {
	raw := `{"overallScore":82,"fluency":85.5}`
	result, err := ExtractJSON[scorePayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 82, result.OverallScore)
	assert.Equal(t, 85.5, result.Fluency)
}

func TestExtractJSON_FencedJSON(t *testing.T) {
	raw := "```json\n{\"overallScore\":70,\"fluency\":66}\n```"
	result, err := ExtractJSON[scorePayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 70, result.OverallScore)
}

func TestExtractJSON_SurroundingText(t *testing.T) {
	raw := "Here is the assessment:\n{\"overallScore\":91,\"fluency\":90}\nKeep practising!"
	result, err := ExtractJSON[scorePayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 91, result.OverallScore)
}

func TestExtractJSON_NestedBracesAndArrays(t *testing.T) {
	type nested struct {
		Feedback    map[string]string `json:"feedback"`
		Suggestions []string          `json:"suggestions"`
	}
	raw := `{"feedback":{"hindi":"clear {matra} sounds"},"suggestions":["slow down","re-read"]}`
	result, err := ExtractJSON[nested](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "clear {matra} sounds", result.Feedback["hindi"])
	assert.Len(t, result.Suggestions, 2)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON[scorePayload]("I could not hear the recording.", nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_InvalidJSON(t *testing.T) {
	_, err := ExtractJSON[scorePayload](`{"overallScore":82, broken}`, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_CommentsAndLeadingDecimals(t *testing.T) {
	raw := "{\n  \"overallScore\": 80, // rounded\n  \"fluency\": .75 /* ratio */\n}"
	result, err := ExtractJSON[scorePayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 80, result.OverallScore)
	assert.Equal(t, 0.75, result.Fluency)
}

func TestExtractJSON_ValidationFailure(t *testing.T) {
	validator := func(p scorePayload) error {
		if p.OverallScore < 0 || p.OverallScore > 100 {
			return fmt.Errorf("overallScore must be in [0,100], got %d", p.OverallScore)
		}
		return nil
	}
	_, err := ExtractJSON(`{"overallScore":140,"fluency":80}`, validator)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestExtractJSON_MultipleFences(t *testing.T) {
	raw := "Some text\n```\n{\"overallScore\":60,\"fluency\":61}\n```\nMore text"
	result, err := ExtractJSON[scorePayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 60, result.OverallScore)
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText("```markdown\nOnce upon a time\n```\n")
	require.NoError(t, err)
	assert.Equal(t, "Once upon a time", text)

	_, err = ExtractText("  \n```\n```")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestExtractJSON_TrailingCommas(t *testing.T) {
	type payload struct {
		OverallScore int      `json:"overallScore"`
		Strengths    []string `json:"strengths"`
	}
	raw := "{\"overallScore\": 77, \"strengths\": [\"clear voice\", \"good pace\",], // done\n}"
	result, err := ExtractJSON[payload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 77, result.OverallScore)
	assert.Equal(t, []string{"clear voice", "good pace"}, result.Strengths)
}

func TestExtractJSON_RepairLeavesStringsAlone(t *testing.T) {
	type payload struct {
		Note string `json:"note"`
	}
	raw := `{"note": "see http://example.org, .5 pts, /* not a comment */",}`
	result, err := ExtractJSON[payload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "see http://example.org, .5 pts, /* not a comment */", result.Note)
}

func TestExtractJSON_NegativeLeadingDecimal(t *testing.T) {
	type payload struct {
		Delta float64 `json:"delta"`
	}
	result, err := ExtractJSON[payload](`{"delta": -.25}`, nil)
	require.NoError(t, err)
	assert.Equal(t, -0.25, result.Delta)
}
