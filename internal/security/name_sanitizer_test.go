package security

import (
	"strings"
	"testing"
)

// TestSanitize_StripsMarkup はタグが除去され、テキストのみが残ることを検証する。
func TestSanitize_StripsMarkup(t *testing.T) {
	sanitizer := NewNameSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "プレーンテキストはそのまま",
			input: "Rahul",
			want:  "Rahul",
		},
		{
			name:  "scriptタグは内容ごと除去される",
			input: `<script>alert("x")</script>Priya`,
			want:  "Priya",
		},
		{
			name:  "装飾タグは除去されテキストが残る",
			input: "<b>Neha</b>",
			want:  "Neha",
		},
		{
			name:  "イベント属性付きのタグも除去される",
			input: `<img src=x onerror="alert(1)">Amit`,
			want:  "Amit",
		},
		{
			name:  "アンパサンドはエスケープされずに残る",
			input: "Tom & Jerry",
			want:  "Tom & Jerry",
		},
		{
			name:  "前後の空白が削除される",
			input: "  Kamal  ",
			want:  "Kamal",
		},
		{
			name:  "連続空白は1つにまとめられる",
			input: "Sanak \t  Kumar",
			want:  "Sanak Kumar",
		},
		{
			name:  "マルチバイト文字はそのまま",
			input: "山田 太郎",
			want:  "山田 太郎",
		},
		{
			name:  "タグのみの入力は空文字列になる",
			input: "<br><hr>",
			want:  "",
		},
		{
			name:  "空白のみの入力は空文字列になる",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewNameSanitizer()

	input := `<i>Vikas</i>  &amp; <u>Anjali</u>`
	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)

	if first != second {
		t.Errorf("Sanitize is not idempotent: first=%q, second=%q", first, second)
	}
}

// TestSanitize_EntityEncodedMarkup はエンティティで隠したタグが復元されずに除去されることを検証する。
func TestSanitize_EntityEncodedMarkup(t *testing.T) {
	sanitizer := NewNameSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "エンコードされたscriptタグは内容ごと除去される",
			input: "&lt;script&gt;alert(1)&lt;/script&gt;",
			want:  "",
		},
		{
			name:  "二重エンコードされたタグも除去される",
			input: "&amp;lt;b&amp;gt;Rohit&amp;lt;/b&amp;gt;",
			want:  "Rohit",
		},
		{
			name:  "数値参照のタグも除去される",
			input: "&#60;img src=x onerror=alert(1)&#62;Sneha",
			want:  "Sneha",
		},
		{
			name:  "エンコードされたアンパサンドは文字として残る",
			input: "Tom &amp; Jerry",
			want:  "Tom & Jerry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if strings.ContainsAny(got, "<>") {
				t.Errorf("Sanitize(%q) = %q still contains markup", tt.input, got)
			}
			if again := sanitizer.Sanitize(got); again != got {
				t.Errorf("Sanitize is not idempotent: first=%q, second=%q", got, again)
			}
		})
	}
}
