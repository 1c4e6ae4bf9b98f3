package imgutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectHeader(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   Kind
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0, 0, 0}, KindJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, KindPNG},
		{"gif89", []byte("GIF89a\x01\x00"), KindGIF},
		{"gif87", []byte("GIF87a\x01\x00"), KindGIF},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBP"), KindWEBP},
		{"riff but not webp", []byte("RIFF\x10\x00\x00\x00WAVE"), KindUnknown},
		{"tiff le", []byte{0x49, 0x49, 0x2a, 0x00, 8, 0, 0, 0}, KindTIFF},
		{"tiff be", []byte{0x4d, 0x4d, 0x00, 0x2a, 0, 0, 0, 8}, KindTIFF},
		{"bmp", []byte("BM\x00\x00\x00\x00\x00\x00"), KindBMP},
		{"text", []byte("hello world!"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectHeader(tc.header)
			if err != nil {
				t.Fatalf("DetectHeader: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDetectHeaderTooShort(t *testing.T) {
	if _, err := DetectHeader([]byte{0xff}); err == nil {
		t.Fatal("expected error for one-byte header")
	}
}

func TestSniffReaderShortFile(t *testing.T) {
	kind, err := SniffReader(bytes.NewReader([]byte{0xff, 0xd8, 0xff, 0xd9}))
	if err != nil {
		t.Fatalf("SniffReader: %v", err)
	}
	if kind != KindJPEG {
		t.Fatalf("got %s, want jpeg", kind)
	}
}

func TestSniffFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	if err := os.WriteFile(path, []byte("GIF89a\x01\x00\x01\x00\x00\x00"), 0o644); err != nil {
		t.Fatal(err)
	}
	kind, err := SniffFile(path)
	if err != nil {
		t.Fatalf("SniffFile: %v", err)
	}
	if kind != KindGIF {
		t.Fatalf("got %s, want gif", kind)
	}
}

func TestKindFromPath(t *testing.T) {
	cases := map[string]Kind{
		"a/photo.JPG":  KindJPEG,
		"photo.jpeg":   KindJPEG,
		"icon.png":     KindPNG,
		"anim.gif":     KindGIF,
		"icon.bmp":     KindBMP,
		"pic.webp":     KindWEBP,
		"scan.tiff":    KindTIFF,
		"scan.tif":     KindUnknown,
		"notes.txt":    KindUnknown,
		"no-extension": KindUnknown,
	}
	for path, want := range cases {
		if got := KindFromPath(path); got != want {
			t.Errorf("KindFromPath(%q) = %s, want %s", path, got, want)
		}
	}
	if KindFromExt("png") != KindPNG {
		t.Error("KindFromExt should accept extensions without a dot")
	}
}
