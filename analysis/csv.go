package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"Name", "Accesses", "L1Hits", "L2Hits", "MemoryAccesses",
	"L1HitRatio", "L2HitRatio", "L2GlobalHitRatio", "HitRatio",
	"AMAT", "TotalCost",
}

// WriteCSV writes one row per result, preceded by a header.
func WriteCSV(w io.Writer, results []RunStatistics) error {
	csvWriter := csv.NewWriter(w)

	err := csvWriter.Write(csvHeader)
	if err != nil {
		return err
	}

	for _, r := range results {
		err = csvWriter.Write([]string{
			r.Name,
			strconv.Itoa(r.TotalAccesses),
			strconv.Itoa(r.L1Hits),
			strconv.Itoa(r.L2Hits),
			strconv.Itoa(r.MemoryAccesses),
			fmt.Sprintf("%.6f", r.L1HitRatio),
			fmt.Sprintf("%.6f", r.L2HitRatio),
			fmt.Sprintf("%.6f", r.L2GlobalHitRatio),
			fmt.Sprintf("%.6f", r.HitRatio),
			fmt.Sprintf("%.6f", r.AMAT),
			strconv.Itoa(r.TotalCost),
		})
		if err != nil {
			return err
		}
	}

	csvWriter.Flush()

	return csvWriter.Error()
}
