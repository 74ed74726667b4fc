package nicovideo

import (
	"errors"
	"testing"

	"github.com/desertthunder/nicofix/internal/shared"
)

func TestSelectBestAudio(t *testing.T) {
	t.Run("picks highest available quality", func(t *testing.T) {
		audio, ok := SelectBestAudio(sampleWatch())
		if !ok {
			t.Fatal("expected an audio stream")
		}
		if audio.ID != "audio-aac-128kbps" {
			t.Errorf("expected audio-aac-128kbps, got %s", audio.ID)
		}
	})

	t.Run("no domand section", func(t *testing.T) {
		if _, ok := SelectBestAudio(&WatchData{}); ok {
			t.Error("expected no audio")
		}
		if _, ok := SelectBestAudio(nil); ok {
			t.Error("expected no audio for nil watch data")
		}
	})

	t.Run("nothing available", func(t *testing.T) {
		watch := &WatchData{Media: WatchMedia{Domand: &WatchMediaDomand{
			Audios: []WatchMediaDomandAudio{{ID: "a", QualityLevel: 3}},
		}}}
		if _, ok := SelectBestAudio(watch); ok {
			t.Error("expected no audio")
		}
	})
}

func TestNewStreamFixtureData(t *testing.T) {
	t.Run("pairs watch data with best audio", func(t *testing.T) {
		stream, err := NewStreamFixtureData(sampleWatch())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stream.SelectedAudio.ID != "audio-aac-128kbps" {
			t.Errorf("unexpected selected audio %s", stream.SelectedAudio.ID)
		}
		if stream.WatchData.Video.ID != "sm45285955" {
			t.Errorf("unexpected watch data video %s", stream.WatchData.Video.ID)
		}
	})

	t.Run("no audio", func(t *testing.T) {
		_, err := NewStreamFixtureData(&WatchData{})
		if !errors.Is(err, shared.ErrNoData) {
			t.Errorf("expected ErrNoData, got %v", err)
		}
	})
}
