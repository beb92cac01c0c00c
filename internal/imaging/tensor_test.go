package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestToTensor_Shape(t *testing.T) {
	img := createUniformImage(300, 90, color.RGBA{10, 20, 30, 255})

	data, err := ToTensor(img, 32, 128)
	if err != nil {
		t.Fatalf("ToTensor failed: %v", err)
	}
	if len(data) != 3*32*128 {
		t.Errorf("tensor length: got %d, want %d", len(data), 3*32*128)
	}
}

func TestToTensor_ValueRange(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want float64
	}{
		{"black maps to -1", color.RGBA{0, 0, 0, 255}, -1},
		{"white maps to +1", color.RGBA{255, 255, 255, 255}, 1},
		{"mid gray maps to ~0", color.RGBA{128, 128, 128, 255}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createUniformImage(128, 32, tt.c)
			data, err := ToTensor(img, 32, 128)
			if err != nil {
				t.Fatalf("ToTensor failed: %v", err)
			}
			for i, v := range data {
				if math.Abs(float64(v)-tt.want) > 0.01 {
					t.Fatalf("data[%d]: got %f, want %f", i, v, tt.want)
				}
			}
		})
	}
}

func TestToTensor_ChannelLayout(t *testing.T) {
	// Pure red: R channel +1, G and B channels -1, in NCHW order.
	img := createUniformImage(128, 32, color.RGBA{255, 0, 0, 255})
	data, err := ToTensor(img, 32, 128)
	if err != nil {
		t.Fatalf("ToTensor failed: %v", err)
	}

	plane := 32 * 128
	if data[0] < 0.99 {
		t.Errorf("R plane: got %f, want ~1", data[0])
	}
	if data[plane] > -0.99 {
		t.Errorf("G plane: got %f, want ~-1", data[plane])
	}
	if data[2*plane] > -0.99 {
		t.Errorf("B plane: got %f, want ~-1", data[2*plane])
	}
}

func TestToTensor_Deterministic(t *testing.T) {
	img := createUniformImage(77, 19, color.RGBA{200, 100, 50, 255})

	first, err := ToTensor(img, 32, 128)
	if err != nil {
		t.Fatalf("ToTensor failed: %v", err)
	}
	second, err := ToTensor(img, 32, 128)
	if err != nil {
		t.Fatalf("ToTensor failed: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ToTensor not deterministic at index %d: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestToTensor_Invalid(t *testing.T) {
	valid := createUniformImage(10, 10, color.White)

	tests := []struct {
		name   string
		img    image.Image
		height int
		width  int
	}{
		{"zero height", valid, 0, 128},
		{"zero width", valid, 32, 0},
		{"negative", valid, -1, -1},
		{"empty image", image.NewRGBA(image.Rect(0, 0, 0, 0)), 32, 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToTensor(tt.img, tt.height, tt.width); err == nil {
				t.Error("ToTensor should fail")
			}
		})
	}
}
