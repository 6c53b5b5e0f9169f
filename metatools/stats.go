package metatools

func Mean(inData ...float64) float64 {
	if len(inData) == 0 {
		return 0
	}
	sum := Sum(inData...)
	return sum / float64(len(inData))
}

func Sum(inData ...float64) float64 {
	var sum float64
	for _, val := range inData {
		sum += val
	}
	return sum
}

func Max(inData ...float64) float64 {
	if len(inData) == 0 {
		return 0
	}
	max := inData[0]
	for _, val := range inData[1:] {
		if val > max {
			max = val
		}
	}
	return max
}

func Min(inData ...float64) float64 {
	if len(inData) == 0 {
		return 0
	}
	min := inData[0]
	for _, val := range inData[1:] {
		if val < min {
			min = val
		}
	}
	return min
}

// Summary aggregates a manifest for display.
type Summary struct {
	Groups             int
	Images             int
	MismatchedGroups   int
	EmptyGroups        int
	ImagesPerSeason    map[Season]int
	Tiles              map[string]int
	MeanImagesPerGroup float64
	MinImagesPerGroup  float64
	MaxImagesPerGroup  float64
}

func Summarize(records []GroupRecord) Summary {
	s := Summary{
		Groups:          len(records),
		ImagesPerSeason: make(map[Season]int, len(Seasons)),
		Tiles:           make(map[string]int),
	}
	counts := make([]float64, 0, len(records))
	for _, rec := range records {
		counts = append(counts, float64(len(rec.Images)))
		s.Images += len(rec.Images)
		if !rec.DimensionsMatch {
			s.MismatchedGroups++
		}
		if len(rec.Images) == 0 {
			s.EmptyGroups++
		}
		for _, img := range rec.Images {
			s.ImagesPerSeason[img.Season]++
			s.Tiles[img.TileID]++
		}
	}
	s.MeanImagesPerGroup = Mean(counts...)
	s.MinImagesPerGroup = Min(counts...)
	s.MaxImagesPerGroup = Max(counts...)
	return s
}
