package organize

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
)

// windowSpan is the bounded temperature range a single session folder covers.
const windowSpan = 4.0

// UnknownTempFolder labels records with no usable sensor temperature.
const UnknownTempFolder = "unknown_temp"

// RoundTemp rounds a temperature to the nearest degree with half-up ties.
func RoundTemp(temp float64) int {
	return int(math.Floor(temp + 0.5))
}

// FormatTempFolder renders an integer temperature as a folder token,
// spelling the sign out so the name stays filesystem-friendly.
func FormatTempFolder(tempInt int) string {
	if tempInt >= 0 {
		return fmt.Sprintf("%dc", tempInt)
	}
	return fmt.Sprintf("minus%dc", -tempInt)
}

// FormatTempRange renders a bounded range folder token using the floor of the
// lower bound and the ceiling of the upper bound.
func FormatTempRange(minTemp, maxTemp float64) string {
	return fmt.Sprintf("%s_to_%s",
		FormatTempFolder(int(math.Floor(minTemp))),
		FormatTempFolder(int(math.Ceil(maxTemp))))
}

// AssignTempFolders solves the per-group folder placement over the group's
// raw temperatures.
//
// Calibration groups get one folder per individually rounded value. Session
// groups whose full range fits in windowSpan share a single range folder;
// wider groups get the densest windowSpan sub-window as the main folder and
// route outliers into below_/above_ deviant subfolders. The densest window is
// found by trying every distinct value as a window start in ascending order;
// a later start replaces the incumbent only on a strictly greater count, so
// the lowest of equally dense windows always wins. That tie-break is part of
// the on-disk layout contract and must not change between runs.
func AssignTempFolders(temps []float64, calibration bool) map[float64]string {
	if len(temps) == 0 {
		return map[float64]string{}
	}

	folders := make(map[float64]string, len(temps))

	if calibration {
		for _, temp := range temps {
			folders[temp] = FormatTempFolder(RoundTemp(temp))
		}
		return folders
	}

	minTemp, maxTemp := temps[0], temps[0]
	for _, temp := range temps[1:] {
		minTemp = math.Min(minTemp, temp)
		maxTemp = math.Max(maxTemp, temp)
	}

	if maxTemp-minTemp <= windowSpan {
		label := FormatTempRange(minTemp, maxTemp)
		for _, temp := range temps {
			folders[temp] = label
		}
		return folders
	}

	distinct := make([]float64, 0, len(temps))
	seen := make(map[float64]bool, len(temps))
	for _, temp := range temps {
		if !seen[temp] {
			seen[temp] = true
			distinct = append(distinct, temp)
		}
	}
	sort.Float64s(distinct)

	bestStart := distinct[0]
	bestCount := 0
	for _, start := range distinct {
		count := 0
		for _, temp := range temps {
			if start <= temp && temp <= start+windowSpan {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			bestStart = start
		}
	}
	windowEnd := bestStart + windowSpan

	mainFolder := FormatTempRange(bestStart, windowEnd)
	belowFolder := filepath.Join(mainFolder, "below_"+FormatTempFolder(int(math.Floor(bestStart))))
	aboveFolder := filepath.Join(mainFolder, "above_"+FormatTempFolder(int(math.Ceil(windowEnd))))

	for _, temp := range temps {
		switch {
		case temp < bestStart:
			folders[temp] = belowFolder
		case temp > windowEnd:
			folders[temp] = aboveFolder
		default:
			folders[temp] = mainFolder
		}
	}
	return folders
}
