package embedding

import "testing"

func TestNewGeminiProviderModel(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  string
	}{
		{"configured model is kept", "gemini-embedding-001", "gemini-embedding-001"},
		{"empty model falls back to the default", "", "text-embedding-004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewGeminiProvider("key", tt.model).(*GeminiProvider)
			if p.Model != tt.want {
				t.Errorf("Model = %q, want %q", p.Model, tt.want)
			}
		})
	}
}
