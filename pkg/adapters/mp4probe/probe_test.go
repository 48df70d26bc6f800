package mp4probe

import (
	"bytes"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

// buildInitSegment assembles a minimal ftyp+moov with one track of the
// given handler and sample entry type.
func buildInitSegment(t *testing.T, handler, sampleEntry string, durationMs uint64) []byte {
	t.Helper()

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(30000, handler, "en")

	if sampleEntry != "" {
		trak := init.Moov.Trak
		entry := mp4.CreateVisualSampleEntryBox(sampleEntry, 1080, 1920, nil)
		trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)
	}

	init.Moov.Mvhd.Timescale = 1000
	init.Moov.Mvhd.Duration = durationMs

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}
	return buf.Bytes()
}

func TestInspectH264(t *testing.T) {
	data := buildInitSegment(t, "video", "avc1", 9970)

	p := New()
	info, err := p.Inspect(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Codec != "h264" {
		t.Errorf("expected h264, got %q", info.Codec)
	}
	if info.DurationSec != 9.97 {
		t.Errorf("expected duration 9.97, got %v", info.DurationSec)
	}
}

func TestInspectAV1(t *testing.T) {
	data := buildInitSegment(t, "video", "av01", 5000)

	p := New()
	info, err := p.Inspect(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Codec != "av1" {
		t.Errorf("expected av1, got %q", info.Codec)
	}
}

func TestInspectNoVideoTrack(t *testing.T) {
	data := buildInitSegment(t, "audio", "", 5000)

	p := New()
	if _, err := p.Inspect(data); err == nil {
		t.Fatal("expected error for a file without a video track")
	}
}

func TestInspectGarbage(t *testing.T) {
	p := New()
	if _, err := p.Inspect([]byte("definitely not an mp4")); err == nil {
		t.Fatal("expected error for garbage input")
	}
	if _, err := p.Inspect(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}
