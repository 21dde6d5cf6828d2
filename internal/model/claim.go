package model

import "time"

// ClaimHistory は1回のクレームで付与されたポイントの記録を表す。
// 作成後は更新も削除もされない。
type ClaimHistory struct {
	ID            string
	UserID        string
	PointsClaimed int
	ClaimedAt     time.Time
}

// ClaimHistoryEntry は履歴表示用の読み取りモデル。
// UserNameは書き込み時にコピーせず、読み取り時にusersから解決する。
type ClaimHistoryEntry struct {
	ID            string
	UserID        string
	UserName      string
	PointsClaimed int
	ClaimedAt     time.Time
}

// 1回のクレームで付与されるポイントの範囲（両端を含む）。
const (
	MinClaimPoints = 1
	MaxClaimPoints = 10
)
