// Package model はドメインモデルを定義する。
package model

import "time"

// User はランキングに参加するユーザーを表す。
// TotalPointsはクレーム処理によってのみ加算される。
type User struct {
	ID          string
	Name        string
	TotalPoints int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
