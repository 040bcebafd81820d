package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFallbackMessage(t *testing.T) {
	t.Parallel()
	msg := FallbackMessage(Context{Streak: 5, TaskTitle: "write chapter three"})
	require.Equal(t,
		"Hey, you've drifted for 5 checks in a row. Let's steer back to write chapter three and pick up where you left off.",
		msg)
}

func TestFallbackMessageWithoutTask(t *testing.T) {
	t.Parallel()
	msg := FallbackMessage(Context{Streak: 7})
	require.Contains(t, msg, "7 checks in a row")
	require.Contains(t, msg, "your goal")
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()
	prompt := buildPrompt(Context{
		Goal:           "finish the thesis",
		TaskTitle:      "chapter three",
		Streak:         5,
		ElapsedMinutes: 42,
		RecentReasons:  []string{"watching videos", "chat window open"},
	})
	require.Contains(t, prompt, "5 consecutive checks")
	require.Contains(t, prompt, "finish the thesis")
	require.Contains(t, prompt, "chapter three")
	require.Contains(t, prompt, "42 minutes")
	require.Contains(t, prompt, "watching videos; chat window open")
}

func TestBuildPromptMinimal(t *testing.T) {
	t.Parallel()
	prompt := buildPrompt(Context{Goal: "study", Streak: 5})
	require.NotContains(t, prompt, "Current task")
	require.NotContains(t, prompt, "Session running")
	require.NotContains(t, prompt, "Recent observations")
}
