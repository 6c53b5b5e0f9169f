package metatools

import (
	"strings"
	"time"
)

// Acquisition is the information encoded in an image directory name of the form
// <timestamp_start>_<timestamp_end>_<tile_id>.
type Acquisition struct {
	TimestampStart string
	TimestampEnd   string
	TileID         string
	Start          time.Time
	Season         Season
}

// ParseAcquisitionDir splits a directory name into its three tokens and classifies
// the season from the start timestamp. The end timestamp is kept verbatim.
func ParseAcquisitionDir(name string) (Acquisition, error) {
	tokens := strings.Split(name, "_")
	if len(tokens) != 3 {
		return Acquisition{}, &ParseError{Input: name, Reason: "expected <start>_<end>_<tile>"}
	}
	start, err := ParseTimestamp(tokens[0])
	if err != nil {
		return Acquisition{}, err
	}
	return Acquisition{
		TimestampStart: tokens[0],
		TimestampEnd:   tokens[1],
		TileID:         tokens[2],
		Start:          start,
		Season:         ClassifySeason(start),
	}, nil
}
