package extract

import (
	"testing"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/source"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		run  source.TextRun
		view model.Matrix
		want model.Fragment
	}{
		{
			name: "upright",
			run:  source.TextRun{Text: "Hi", Transform: model.Matrix{12, 0, 0, 12, 72, 700}, Width: 10, Height: 12, Font: "f1_0"},
			view: model.Identity(),
			want: model.Fragment{Text: "Hi", X: 72, Y: 700, Width: 10, Height: 12, Font: "f1_0"},
		},
		{
			name: "view translation",
			run:  source.TextRun{Text: "a", Transform: model.Matrix{10, 0, 0, 10, 50, 60}, Width: 5, Height: 10},
			view: model.Translate(-20, -30),
			want: model.Fragment{Text: "a", X: 30, Y: 30, Width: 5, Height: 10},
		},
		{
			name: "degenerate height falls back",
			run:  source.TextRun{Text: "b", Transform: model.Matrix{1, 0, 0, 1, 5, 5}, Width: 4, Height: 9},
			view: model.Identity(),
			want: model.Fragment{Text: "b", X: 5, Y: 5, Width: 4, Height: 9},
		},
		{
			name: "rotated",
			run:  source.TextRun{Text: "up", Transform: model.Matrix{0, 10, -10, 0, 100, 100}, Width: 8, Height: 10},
			view: model.Identity(),
			want: model.Fragment{Text: "up", X: 100, Y: 100, Width: 8, Height: 10, Rotation: 90},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.run, tt.view); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
