package extract

import (
	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/source"
)

// Normalize converts a text run into a fragment in page space.
//
// The glyph height is the length of the combined transform's Y vector. When
// that value is degenerate (<= 1) the run's own height is used instead.
func Normalize(run source.TextRun, view model.Matrix) model.Fragment {
	tx := run.Transform.Multiply(view)

	height := tx.VerticalScale()
	if height <= 1 {
		height = run.Height
	}

	return model.Fragment{
		Text:     run.Text,
		X:        model.Round(tx[4], 2),
		Y:        model.Round(tx[5], 2),
		Width:    model.Round(run.Width*view.HorizontalScale(), 2),
		Height:   model.Round(height, 2),
		Font:     run.Font,
		Rotation: model.Round(tx.RotationDegrees(), 2),
	}
}
