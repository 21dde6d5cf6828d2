// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NameSanitizer はユーザーが入力した表示名からHTMLを除去し、
// ランキング画面でのXSSを防ぐ。bluemondayのStrictPolicyで全タグを落とし、
// 空白を正規化したプレーンテキストのみを保存対象にする。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NameSanitizerService は表示名サニタイズのインターフェースを定義する。
type NameSanitizerService interface {
	// Sanitize は表示名からHTMLタグを除去し、前後の空白を削って連続空白を1つにまとめる。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// nameSanitizer はNameSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type nameSanitizer struct {
	policy *bluemonday.Policy
}

// NewNameSanitizer はNameSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全ての要素と属性を除去し、テキストのみを残す。
func NewNameSanitizer() *nameSanitizer {
	return &nameSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// maxSanitizePasses はエンティティの多重エンコードを剥がす最大回数。
const maxSanitizePasses = 8

// Sanitize は表示名をプレーンテキストに正規化する。
// bluemondayは残したテキストをHTMLエスケープして返すため、保存用にアンエスケープする。
// アンエスケープでタグが復元される入力（&lt;script&gt;など）があるため、
// 結果が変化しなくなるまでStrictPolicyとアンエスケープを繰り返す。
// 上限までに収束しない場合はエスケープ済みの文字列を返す。
func (s *nameSanitizer) Sanitize(raw string) string {
	text := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(text))
		if next == text {
			return strings.Join(strings.Fields(next), " ")
		}
		text = next
	}
	return strings.Join(strings.Fields(s.policy.Sanitize(text)), " ")
}
