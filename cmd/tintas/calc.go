package main

import (
	"context"
	"tintas-bot/internal/calculators"
	"tintas-bot/internal/server"
	"tintas-bot/pkg/api"

	"github.com/spf13/cobra"
)

var (
	calcRemote string
	calcJSON   bool
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run a calculation locally or against the API",
}

var (
	paintWidth    float64
	paintHeight   float64
	paintWalls    int
	paintOpenings float64
	paintCoverage float64
	paintCoats    int
	paintWaste    float64
	paintPackages []float64
)

var calcPaintCmd = &cobra.Command{
	Use:   "paint",
	Short: "Liters of paint and cans to buy for a set of walls",
	Long: `Computes the paint needed for --walls identical walls of --width × --height
meters, minus --openings m² of doors and windows.

Example:
  tintas calc paint --width 4.5 --height 2.8 --walls 4 --openings 2`,
	Args: cobra.NoArgs,
	RunE: runCalcPaint,
}

var (
	floorWidth  float64
	floorLength float64
	floorType   string
	floorBox    float64
	floorWaste  float64
)

var calcFloorCmd = &cobra.Command{
	Use:   "floor",
	Short: "Boxes of flooring for a room",
	Long: `Computes the boxes of flooring for a --width × --length room, where --box
is the area one box covers. Known types: ceramico, porcelanato, laminado,
vinilico, madeira, pedra.

Example:
  tintas calc floor --width 4 --length 5 --type porcelanato --box 2.2`,
	Args: cobra.NoArgs,
	RunE: runCalcFloor,
}

func init() {
	calcCmd.PersistentFlags().StringVar(&calcRemote, "remote", "", "Base URL of a running API to call instead of computing locally")
	calcCmd.PersistentFlags().BoolVar(&calcJSON, "json", false, "Print the result as JSON")

	pf := calcPaintCmd.Flags()
	pf.Float64Var(&paintWidth, "width", 0, "Wall width in meters")
	pf.Float64Var(&paintHeight, "height", 0, "Wall height in meters")
	pf.IntVar(&paintWalls, "walls", 1, "Number of identical walls")
	pf.Float64Var(&paintOpenings, "openings", 0, "Total area of doors and windows in m²")
	pf.Float64Var(&paintCoverage, "coverage", 0, "m² per liter per coat (default PRICING_DEFAULT_COVERAGE)")
	pf.IntVar(&paintCoats, "coats", 0, "Number of coats (default PRICING_DEFAULT_COATS)")
	pf.Float64Var(&paintWaste, "waste", 0, "Waste fraction, e.g. 0.1 (default PRICING_DEFAULT_WASTE)")
	pf.Float64SliceVar(&paintPackages, "packages", nil, "Package sizes in liters (default PRICING_PACKAGE_SIZES)")
	_ = calcPaintCmd.MarkFlagRequired("width")
	_ = calcPaintCmd.MarkFlagRequired("height")

	ff := calcFloorCmd.Flags()
	ff.Float64Var(&floorWidth, "width", 0, "Room width in meters")
	ff.Float64Var(&floorLength, "length", 0, "Room length in meters")
	ff.StringVar(&floorType, "type", "", "Floor type")
	ff.Float64Var(&floorBox, "box", 0, "m² covered by one box")
	ff.Float64Var(&floorWaste, "waste", 0, "Waste fraction for unknown types (default PRICING_DEFAULT_WASTE)")
	_ = calcFloorCmd.MarkFlagRequired("width")
	_ = calcFloorCmd.MarkFlagRequired("length")
	_ = calcFloorCmd.MarkFlagRequired("type")
	_ = calcFloorCmd.MarkFlagRequired("box")

	calcCmd.AddCommand(calcPaintCmd)
	calcCmd.AddCommand(calcFloorCmd)
}

func runCalcPaint(cmd *cobra.Command, args []string) error {
	req := api.PaintRequest{
		Width:    paintWidth,
		Height:   paintHeight,
		Walls:    paintWalls,
		Packages: paintPackages,
	}
	flags := cmd.Flags()
	if flags.Changed("openings") {
		req.Openings = &paintOpenings
	}
	if flags.Changed("coverage") {
		req.Coverage = &paintCoverage
	}
	if flags.Changed("coats") {
		req.Coats = &paintCoats
	}
	if flags.Changed("waste") {
		req.WasteFraction = &paintWaste
	}

	var resp api.PaintResponse
	if calcRemote != "" {
		r, err := newAPIClient(calcRemote).CalculatePaint(commandContext(cmd), req)
		if err != nil {
			return err
		}
		resp = *r
	} else {
		r, _, err := server.ComputePaint(cfg.Pricing, req)
		if err != nil {
			return err
		}
		resp = r
	}

	if calcJSON {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	printPaint(cmd.OutOrStdout(), resp)
	return nil
}

func runCalcFloor(cmd *cobra.Command, args []string) error {
	req := api.FloorRequest{
		Width:       floorWidth,
		Length:      floorLength,
		FloorType:   floorType,
		BoxCoverage: floorBox,
	}
	if cmd.Flags().Changed("waste") {
		req.WasteFraction = &floorWaste
	}

	var resp api.FloorResponse
	if calcRemote != "" {
		r, err := newAPIClient(calcRemote).CalculateFloor(commandContext(cmd), req)
		if err != nil {
			return err
		}
		resp = *r
	} else {
		r, _, err := server.ComputeFloor(calculators.NewFloorCalculator(), cfg.Pricing, req)
		if err != nil {
			return err
		}
		resp = r
	}

	if calcJSON {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	printFloor(cmd.OutOrStdout(), resp)
	return nil
}

func newAPIClient(baseURL string) *api.Client {
	return api.NewClient(baseURL, "", cfg.HTTPRequestTimeout, zapLogger)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
