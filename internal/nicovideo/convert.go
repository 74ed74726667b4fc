package nicovideo

import (
	"fmt"

	"github.com/desertthunder/nicofix/internal/shared"
)

// SelectBestAudio returns the available domand audio stream with the highest quality level.
//
// This mirrors the selection the provider performs before requesting an HLS stream,
// so stream fixtures exercise the same audio the provider would play.
func SelectBestAudio(watch *WatchData) (*WatchMediaDomandAudio, bool) {
	if watch == nil || watch.Media.Domand == nil {
		return nil, false
	}

	var best *WatchMediaDomandAudio
	for i := range watch.Media.Domand.Audios {
		audio := &watch.Media.Domand.Audios[i]
		if !audio.IsAvailable {
			continue
		}
		if best == nil || audio.QualityLevel > best.QualityLevel {
			best = audio
		}
	}
	return best, best != nil
}

// NewStreamFixtureData builds the stream fixture for a video's watch data.
func NewStreamFixtureData(watch *WatchData) (*StreamFixtureData, error) {
	audio, ok := SelectBestAudio(watch)
	if !ok {
		return nil, fmt.Errorf("%w: no available audio in watch data", shared.ErrNoData)
	}
	return &StreamFixtureData{
		WatchData:     *watch,
		SelectedAudio: *audio,
	}, nil
}
