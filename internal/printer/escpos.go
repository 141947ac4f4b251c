package printer

import (
	"image"
)

const (
	esc = 0x1b
	gs  = 0x1d

	// bandHeight limits each raster command so slow printers keep up
	bandHeight = 256
)

func initCommand() []byte {
	return []byte{esc, '@'}
}

// cutCommand feeds three lines and performs a partial cut
func cutCommand() []byte {
	return []byte{gs, 'V', 66, 3}
}

func feedCommand(lines int) []byte {
	if lines < 0 {
		lines = 0
	}
	if lines > 255 {
		lines = 255
	}
	return []byte{esc, 'd', byte(lines)}
}

// rasterBands encodes img as GS v 0 raster commands, one per band of rows.
// A pixel is printed when its palette index is non-zero.
func rasterBands(img *image.Paletted) [][]byte {
	b := img.Bounds()
	widthBytes := (b.Dx() + 7) / 8

	var bands [][]byte
	for top := b.Min.Y; top < b.Max.Y; top += bandHeight {
		rows := bandHeight
		if top+rows > b.Max.Y {
			rows = b.Max.Y - top
		}

		cmd := make([]byte, 8, 8+widthBytes*rows)
		cmd[0], cmd[1], cmd[2], cmd[3] = gs, 'v', '0', 0
		cmd[4], cmd[5] = byte(widthBytes), byte(widthBytes>>8)
		cmd[6], cmd[7] = byte(rows), byte(rows>>8)

		for y := top; y < top+rows; y++ {
			line := make([]byte, widthBytes)
			for x := b.Min.X; x < b.Max.X; x++ {
				if img.ColorIndexAt(x, y) != 0 {
					col := x - b.Min.X
					line[col/8] |= 0x80 >> (col % 8)
				}
			}
			cmd = append(cmd, line...)
		}

		bands = append(bands, cmd)
	}

	return bands
}
