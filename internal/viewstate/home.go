package viewstate

import (
	"context"

	"github.com/hitoshi/travelboard/internal/gateway"
	"github.com/hitoshi/travelboard/internal/model"
)

// HomeGateway はホーム画面が使うゲートウェイ操作。
type HomeGateway interface {
	LoadHome(ctx context.Context) gateway.Result[model.Home]
}

// HomeBoard はホーム画面の状態。天気・天気予報・為替レートをまとめて持つ。
// ホーム画面はキャッシュを使わない。
type HomeBoard struct {
	gateway HomeGateway

	surface surface
	home    Snapshot[*model.Home]
}

// NewHomeBoard はHomeBoardを生成する。
func NewHomeBoard(gw HomeGateway) *HomeBoard {
	return &HomeBoard{gateway: gw}
}

// Home は表示中のホーム情報を返す。未取得または失敗時のDataはnil。
func (b *HomeBoard) Home() Snapshot[*model.Home] {
	b.surface.mu.Lock()
	defer b.surface.mu.Unlock()
	return b.home
}

// ExchangeRate は取得済みのKRW/TWD基準レートを返す。未取得の場合はfalse。
func (b *HomeBoard) ExchangeRate() (float64, bool) {
	h := b.Home().Data
	if h == nil || h.Exchange.BaseRate <= 0 {
		return 0, false
	}
	return h.Exchange.BaseRate, true
}

// Load はホーム情報をまとめて取得する。1つでも失敗した場合は前回の表示を残さずエラーを返す。
func (b *HomeBoard) Load(ctx context.Context) error {
	b.surface.mu.Lock()
	token := b.surface.issueLocked()
	b.surface.mu.Unlock()

	res := b.gateway.LoadHome(ctx)

	b.surface.mu.Lock()
	defer b.surface.mu.Unlock()
	if !b.surface.isLatestLocked(token) {
		return model.NewSupersededError()
	}
	if !res.Success {
		message := res.Message
		if message == "" {
			message = gateway.MsgHomeFailed
		}
		code := res.Code
		if code == "" {
			code = model.ErrCodeNetwork
		}
		b.home = Snapshot[*model.Home]{Message: message}
		return &model.APIError{Code: code, Message: message, Category: "gateway"}
	}
	home := res.Data
	b.home = Snapshot[*model.Home]{Data: &home}
	return nil
}
