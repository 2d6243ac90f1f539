package constant

import (
	"strings"
	"testing"
)

func TestBuildChatSystemPrompt(t *testing.T) {
	prompt := BuildChatSystemPrompt("グランドメゾン青山", "[SourceID: doc-1, Page: 2, Block: 5] ゴミ出しは火曜日です。")

	for _, want := range []string{
		"シメスくん",
		"グランドメゾン青山",
		"[SourceID: doc-1, Page: 2, Block: 5] ゴミ出しは火曜日です。",
		"参考資料:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildChatSystemPromptEmptyApartmentName(t *testing.T) {
	prompt := BuildChatSystemPrompt("", "context")

	if !strings.Contains(prompt, ApartmentNameUnspecified) {
		t.Errorf("prompt should fall back to %q for a missing apartment name", ApartmentNameUnspecified)
	}
}
