package main

import (
	"encoding/json"
	"fmt"
	"io"
	"tintas-bot/internal/calculators"
	"tintas-bot/pkg/api"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPaint(w io.Writer, resp api.PaintResponse) {
	fmt.Fprintf(w, "Area:           %s m²\n", calculators.FormatQuantity(resp.TotalArea))
	fmt.Fprintf(w, "Coverage:       %s m²/L per coat, %d coat(s)\n", calculators.FormatQuantity(resp.Coverage), resp.Coats)
	fmt.Fprintf(w, "Paint (raw):    %s L\n", calculators.FormatQuantity(resp.RawLiters))
	fmt.Fprintf(w, "Paint (+waste): %s L\n", calculators.FormatQuantity(resp.LitersNeeded))
	if resp.SuggestedPackage != "" {
		fmt.Fprintf(w, "Buy:            %s\n", resp.SuggestedPackage)
	}
	if resp.Packaging != nil && resp.Packaging.Packages > 0 {
		fmt.Fprintf(w, "Leftover:       %s L\n", calculators.FormatQuantity(resp.Packaging.Leftover))
	}
}

func printFloor(w io.Writer, resp api.FloorResponse) {
	fmt.Fprintf(w, "Floor type: %s\n", resp.FloorType)
	fmt.Fprintf(w, "Area:       %s m²\n", calculators.FormatQuantity(resp.TotalArea))
	fmt.Fprintf(w, "Boxes:      %s (waste %s)\n", calculators.FormatQuantity(resp.UnitsNeeded), calculators.FormatQuantity(resp.WasteFraction))
	fmt.Fprintf(w, "Grout:      %s kg\n", calculators.FormatQuantity(resp.GroutKg))
	fmt.Fprintf(w, "Adhesive:   %s kg\n", calculators.FormatQuantity(resp.AdhesiveKg))
}
