package viewstate

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/travelboard/internal/gateway"
	"github.com/hitoshi/travelboard/internal/kvstore"
	"github.com/hitoshi/travelboard/internal/model"
)

// スポットの種類。
const (
	SpotTypeRestaurant = "restaurant"
	SpotTypeCafe       = "cafe"
	SpotTypeAttraction = "attraction"
)

// 検索半径の範囲（メートル）。
const (
	minRadius = 1
	maxRadius = 50000
)

// スポット画面のメッセージ。
const (
	MsgSpotsStale   = "네트워크 오류로 오프라인 캐시 목록을 표시합니다."
	MsgSpotsFailed  = "장소 목록 조회에 실패했습니다."
	MsgDetailStale  = "오프라인 캐시 상세정보를 표시합니다."
	MsgDetailFailed = "장소 상세 조회에 실패했습니다."
)

// SpotGateway はスポット画面が使うゲートウェイ操作。
type SpotGateway interface {
	Spots(ctx context.Context, params gateway.SpotParams) gateway.Result[[]model.Spot]
	SpotDetail(ctx context.Context, spotID, spotType string) gateway.Result[model.SpotDetail]
}

// Filters はスポット検索の条件。
type Filters struct {
	Type      string
	Radius    string
	OpenNow   bool
	MinRating string
}

// DefaultFilters は初期表示の検索条件。
func DefaultFilters() Filters {
	return Filters{Type: SpotTypeRestaurant, Radius: gateway.DefaultRadius}
}

// Normalize は検索条件を検証し、空白の除去と既定値の補完をした条件を返す。
func (f Filters) Normalize() (Filters, error) {
	switch f.Type {
	case SpotTypeRestaurant, SpotTypeCafe, SpotTypeAttraction:
	default:
		return f, model.NewInvalidSpotQueryError("type은 restaurant, cafe, attraction 중 하나여야 합니다.")
	}

	f.Radius = strings.TrimSpace(f.Radius)
	if f.Radius == "" {
		f.Radius = gateway.DefaultRadius
	}
	radius, err := strconv.Atoi(f.Radius)
	if err != nil || radius < minRadius || radius > maxRadius {
		return f, model.NewInvalidSpotQueryError("radius는 1~50000 사이의 정수여야 합니다.")
	}
	f.Radius = strconv.Itoa(radius)

	f.MinRating = strings.TrimSpace(f.MinRating)
	if f.MinRating != "" {
		rating, err := strconv.ParseFloat(f.MinRating, 64)
		if err != nil || rating < 0 || rating > 5 {
			return f, model.NewInvalidSpotQueryError("minRating은 0~5 사이여야 합니다.")
		}
	}
	return f, nil
}

// Location は検索の中心座標。
type Location struct {
	Lat float64
	Lng float64
}

// Validate は座標が範囲内かを検証する。
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return model.NewInvalidSpotQueryError("lat은 -90~90 사이여야 합니다.")
	}
	if l.Lng < -180 || l.Lng > 180 {
		return model.NewInvalidSpotQueryError("lng은 -180~180 사이여야 합니다.")
	}
	return nil
}

// SpotBoard はスポット画面の状態。検索条件、現在地、一覧、選択中のスポットと詳細を持つ。
type SpotBoard struct {
	gateway SpotGateway
	cache   Cache

	list   surface
	detail surface

	filters  Filters
	location *Location
	spots    Snapshot[[]model.Spot]

	selectedID string
	spotDetail Snapshot[*model.SpotDetail]
}

// NewSpotBoard はSpotBoardを生成する。
func NewSpotBoard(gw SpotGateway, cache Cache) *SpotBoard {
	return &SpotBoard{
		gateway: gw,
		cache:   cache,
		filters: DefaultFilters(),
	}
}

// Filters は現在の検索条件を返す。
func (b *SpotBoard) Filters() Filters {
	b.list.mu.Lock()
	defer b.list.mu.Unlock()
	return b.filters
}

// Location は現在地を返す。未設定の場合はfalse。
func (b *SpotBoard) Location() (Location, bool) {
	b.list.mu.Lock()
	defer b.list.mu.Unlock()
	if b.location == nil {
		return Location{}, false
	}
	return *b.location, true
}

// Spots は表示中のスポット一覧を返す。
func (b *SpotBoard) Spots() Snapshot[[]model.Spot] {
	b.list.mu.Lock()
	defer b.list.mu.Unlock()
	return b.spots
}

// Selected は選択中のスポットIDを返す。
func (b *SpotBoard) Selected() string {
	b.detail.mu.Lock()
	defer b.detail.mu.Unlock()
	return b.selectedID
}

// Detail は表示中のスポット詳細を返す。
func (b *SpotBoard) Detail() Snapshot[*model.SpotDetail] {
	b.detail.mu.Lock()
	defer b.detail.mu.Unlock()
	return b.spotDetail
}

// SetLocation は現在地を設定して、現在の条件で再検索する。
func (b *SpotBoard) SetLocation(ctx context.Context, loc Location) error {
	if err := b.UseLocation(loc); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

// UseLocation は現在地を設定する。再検索は行わない。
func (b *SpotBoard) UseLocation(loc Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	b.list.mu.Lock()
	defer b.list.mu.Unlock()
	b.location = &loc
	return nil
}

// ClearLocation は現在地を解除する。再検索は行わない。
func (b *SpotBoard) ClearLocation() {
	b.list.mu.Lock()
	defer b.list.mu.Unlock()
	b.location = nil
}

// Refresh は現在の条件で再検索する。
func (b *SpotBoard) Refresh(ctx context.Context) error {
	return b.Search(ctx, b.Filters())
}

// Search は検索条件を更新して一覧を取得する。
// 取得に成功すると選択中のスポットと詳細は解除される。
// 失敗時は同じ条件のキャッシュをオフライン表示として使い、キャッシュもなければエラーを返す。
// より新しい検索が発行済みの場合は結果を反映せずSUPERSEDEDエラーを返す。
func (b *SpotBoard) Search(ctx context.Context, f Filters) error {
	filters, err := f.Normalize()
	if err != nil {
		return err
	}

	b.list.mu.Lock()
	token := b.list.issueLocked()
	b.filters = filters
	var loc *Location
	if b.location != nil {
		l := *b.location
		loc = &l
	}
	b.list.mu.Unlock()

	params := spotParams(filters, loc)
	key := kvstore.SpotsKey(spotQuery(filters, loc))
	out := fetchWithFallback(ctx, b.cache, key,
		func(ctx context.Context) gateway.Result[[]model.Spot] { return b.gateway.Spots(ctx, params) },
		nil, MsgSpotsFailed)

	b.list.mu.Lock()
	defer b.list.mu.Unlock()
	if !b.list.isLatestLocked(token) {
		return model.NewSupersededError()
	}

	switch {
	case out.err != nil:
		b.spots = Snapshot[[]model.Spot]{Message: out.err.Message}
		return out.err
	case out.stale:
		b.spots = Snapshot[[]model.Spot]{Data: out.data, Stale: true, Message: MsgSpotsStale}
	default:
		b.spots = Snapshot[[]model.Spot]{Data: out.data}
		b.clearSelection()
	}
	return nil
}

// clearSelection は選択と詳細を解除し、実行中の詳細取得を無効にする。
func (b *SpotBoard) clearSelection() {
	b.detail.mu.Lock()
	defer b.detail.mu.Unlock()
	b.detail.issueLocked()
	b.selectedID = ""
	b.spotDetail = Snapshot[*model.SpotDetail]{}
}

// Select はスポットを選択して詳細を取得する。キャッシュキーは（種類, ID）。
func (b *SpotBoard) Select(ctx context.Context, spotID string) error {
	spotID = strings.TrimSpace(spotID)
	if spotID == "" {
		return model.NewInvalidSpotQueryError("장소 ID가 비어 있습니다.")
	}
	spotType := b.Filters().Type

	b.detail.mu.Lock()
	token := b.detail.issueLocked()
	b.selectedID = spotID
	b.detail.mu.Unlock()

	key := kvstore.SpotDetailKey(spotType, spotID)
	out := fetchWithFallback(ctx, b.cache, key,
		func(ctx context.Context) gateway.Result[model.SpotDetail] {
			return b.gateway.SpotDetail(ctx, spotID, spotType)
		},
		nil, MsgDetailFailed)

	b.detail.mu.Lock()
	defer b.detail.mu.Unlock()
	if !b.detail.isLatestLocked(token) {
		return model.NewSupersededError()
	}

	switch {
	case out.err != nil:
		b.spotDetail = Snapshot[*model.SpotDetail]{Message: out.err.Message}
		return out.err
	case out.stale:
		b.spotDetail = Snapshot[*model.SpotDetail]{Data: &out.data, Stale: true, Message: MsgDetailStale}
	default:
		b.spotDetail = Snapshot[*model.SpotDetail]{Data: &out.data}
	}
	return nil
}

// CloseDetail は詳細表示を閉じる。
func (b *SpotBoard) CloseDetail() {
	b.clearSelection()
}

// FindSpot は表示中の一覧からIDに一致するスポットを返す。
func (b *SpotBoard) FindSpot(spotID string) (model.Spot, bool) {
	for _, s := range b.Spots().Data {
		if s.ID == spotID {
			return s, true
		}
	}
	return model.Spot{}, false
}

func spotParams(f Filters, loc *Location) gateway.SpotParams {
	p := gateway.SpotParams{
		Type:      f.Type,
		Radius:    f.Radius,
		OpenNow:   f.OpenNow,
		MinRating: f.MinRating,
	}
	if loc != nil {
		p.Lat, p.Lng, p.HasLocation = loc.Lat, loc.Lng, true
	}
	return p
}

func spotQuery(f Filters, loc *Location) kvstore.SpotQuery {
	q := kvstore.SpotQuery{
		Type:      f.Type,
		Radius:    f.Radius,
		OpenNow:   f.OpenNow,
		MinRating: f.MinRating,
	}
	if loc != nil {
		q.Lat, q.Lng, q.HasLocation = loc.Lat, loc.Lng, true
	}
	return q
}

// TravelTime は距離から徒歩と公共交通機関の所要時間（分）を見積もる。
// 徒歩は時速4.5km（最短1分）、公共交通機関は時速22km（最短5分）で計算する。
func TravelTime(distanceKm float64) (walkMin, transitMin int) {
	walkMin = max(1, int(math.Round(distanceKm/4.5*60)))
	transitMin = max(5, int(math.Round(distanceKm/22*60)))
	return walkMin, transitMin
}

// OpeningInfo は今日の営業情報。
type OpeningInfo struct {
	Status string
	Detail string
}

var weekdayKo = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// TodayOpeningInfo は営業時間の一覧から今日の行を探して営業状態を返す。
func TodayOpeningInfo(openingHours []string, now time.Time) OpeningInfo {
	day := weekdayKo[now.Weekday()]
	for _, line := range openingHours {
		if !strings.HasPrefix(line, day) {
			continue
		}
		switch {
		case strings.Contains(line, "휴무"):
			return OpeningInfo{Status: "오늘 휴무", Detail: line}
		case strings.Contains(line, "24시간"):
			return OpeningInfo{Status: "24시간 영업", Detail: line}
		default:
			return OpeningInfo{Status: "영업 정보", Detail: line}
		}
	}
	return OpeningInfo{Status: "정보 없음", Detail: "오늘 영업시간 정보를 찾지 못했습니다."}
}

// TypeLabel はスポットの種類の表示名を返す。
func TypeLabel(spotType string) string {
	switch spotType {
	case SpotTypeRestaurant:
		return "맛집"
	case SpotTypeCafe:
		return "카페"
	default:
		return "관광지"
	}
}
