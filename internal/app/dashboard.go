package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hitoshi/travelboard/internal/cli"
	"github.com/hitoshi/travelboard/internal/model"
	"github.com/hitoshi/travelboard/internal/viewstate"
)

func newHomeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show weather, forecast and exchange rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer s.close()

			board := viewstate.NewHomeBoard(s.gateway)
			loadErr := board.Load(cmd.Context())
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderHome(board.Home()))
			return loadErr
		},
	}
}

func newPhrasesCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "phrases [category]",
		Short:     "Show travel phrases (airport, transport, hotel, restaurant, shopping, emergency)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: phraseCategoryValues(),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := viewstate.DefaultPhraseCategory
			if len(args) == 1 {
				category = args[0]
			}

			s, err := openSession(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer s.close()

			board := viewstate.NewPhraseBoard(s.gateway, s.store)
			if err := board.SelectCategory(cmd.Context(), category); model.HasCode(err, model.ErrCodeValidation) {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderPhrases(board.Category(), board.Phrases()))
			return nil
		},
	}
}

func phraseCategoryValues() []string {
	values := make([]string, 0, len(viewstate.PhraseCategories))
	for _, c := range viewstate.PhraseCategories {
		values = append(values, c.Value)
	}
	return values
}

func newTranslateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <korean text>",
		Short: "Translate Korean into Traditional Chinese",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")

			s, err := openSession(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer s.close()

			board := viewstate.NewTranslationBoard(s.gateway, s.store)
			translateErr := board.Translate(cmd.Context(), input)
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderTranslation(input, board.Result()))
			return translateErr
		},
	}
}

// spotFlags はspots/spotコマンド共通の検索条件フラグ。
type spotFlags struct {
	filters  viewstate.Filters
	lat, lng float64
}

func (f *spotFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.filters.Type, "type", viewstate.SpotTypeRestaurant, "place type: restaurant, cafe, attraction")
	flags.StringVar(&f.filters.Radius, "radius", "5000", "search radius in meters (1-50000)")
	flags.BoolVar(&f.filters.OpenNow, "open-now", false, "only places open now")
	flags.StringVar(&f.filters.MinRating, "min-rating", "", "minimum rating (0-5)")
	flags.Float64Var(&f.lat, "lat", 0, "latitude of the current location")
	flags.Float64Var(&f.lng, "lng", 0, "longitude of the current location")
}

// search はフラグの条件で一覧を検索する。--lat/--lngがあれば現在地として使う。
func (f *spotFlags) search(cmd *cobra.Command, board *viewstate.SpotBoard) error {
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
		if err := board.UseLocation(viewstate.Location{Lat: f.lat, Lng: f.lng}); err != nil {
			return err
		}
	}
	return board.Search(cmd.Context(), f.filters)
}

func newSpotsCommand(e *env) *cobra.Command {
	f := &spotFlags{}
	cmd := &cobra.Command{
		Use:   "spots",
		Short: "Search recommended places",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer s.close()

			board := viewstate.NewSpotBoard(s.gateway, s.store)
			searchErr := f.search(cmd, board)
			if model.HasCode(searchErr, model.ErrCodeInvalidSpotQuery) {
				return searchErr
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderSpots(board.Filters(), board.Spots()))
			return searchErr
		},
	}
	f.register(cmd)
	return cmd
}

func newSpotCommand(e *env) *cobra.Command {
	f := &spotFlags{}
	cmd := &cobra.Command{
		Use:   "spot <id>",
		Short: "Show place details with today's opening hours and travel time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer s.close()

			board := viewstate.NewSpotBoard(s.gateway, s.store)
			// 一覧は距離の表示にだけ使うため、取得できなくても詳細は表示する。
			if err := f.search(cmd, board); model.HasCode(err, model.ErrCodeInvalidSpotQuery) {
				return err
			}
			detailErr := board.Select(cmd.Context(), args[0])

			var spot *model.Spot
			if found, ok := board.FindSpot(args[0]); ok {
				spot = &found
			}
			loc, err := e.cfg.Location()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderSpotDetail(board.Detail(), spot, time.Now().In(loc)))
			return detailErr
		},
	}
	f.register(cmd)
	return cmd
}
