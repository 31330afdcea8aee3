package model

import "encoding/json"

// Envelope はプロキシとバックエンドが共通で使うレスポンス形式。
// 成功時はData、失敗時はMessageが設定される。
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// Weather は現在の天気。
type Weather struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	Icon        string  `json:"icon,omitempty"`
	IconURL     string  `json:"iconUrl,omitempty"`
	WindSpeed   float64 `json:"windSpeed"`
}

// ForecastItem は日別の天気予報。
type ForecastItem struct {
	Date        string  `json:"date"`
	MinTemp     float64 `json:"minTemp"`
	MaxTemp     float64 `json:"maxTemp"`
	Description string  `json:"description"`
	IconURL     string  `json:"iconUrl"`
}

// ExchangeRate はKRW→TWDの為替レート。
// BaseRateは1TWDあたりのKRW。
type ExchangeRate struct {
	Currency string  `json:"currency"`
	BaseRate float64 `json:"baseRate"`
	BuyRate  float64 `json:"buyRate"`
	SellRate float64 `json:"sellRate"`
	Date     string  `json:"date"`
}

// Phrase はカテゴリ別の旅行会話フレーズ。
type Phrase struct {
	ID            int64  `json:"id"`
	Category      string `json:"category"`
	Korean        string `json:"korean"`
	Chinese       string `json:"chinese"`
	Pronunciation string `json:"pronunciation"`
}

// Spot はおすすめスポット一覧の1件。
type Spot struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Rating     *float64 `json:"rating"`
	Address    string   `json:"address"`
	PhotoURL   *string  `json:"photoUrl"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	DistanceKm float64  `json:"distanceKm"`
	Reason     string   `json:"reason,omitempty"`
}

// SpotDetail はスポット詳細。
type SpotDetail struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Rating       *float64 `json:"rating"`
	Address      string   `json:"address"`
	Phone        *string  `json:"phone"`
	Website      *string  `json:"website"`
	OpeningHours []string `json:"openingHours"`
	PhotoURLs    []string `json:"photoUrls"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
}

// Translation は翻訳結果。
type Translation struct {
	SourceText     string `json:"sourceText"`
	TranslatedText string `json:"translatedText"`
	SourceLang     string `json:"sourceLang"`
	TargetLang     string `json:"targetLang"`
}

// Home はホーム画面の初期ロードで同時取得する3種類のデータ。
type Home struct {
	Weather  Weather
	Forecast []ForecastItem
	Exchange ExchangeRate
}
