package renderer

import (
	"image"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// Camera generates primary rays for pixel coordinates; j = 0 is the top row
type Camera interface {
	GetRay(i, j int, sampler core.Sampler) core.Ray
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Index in row-major tile order
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	Seed   int64           // Seed of the tile's own sampler
}

// NewTile creates a tile whose sampler seed is derived from the render seed and the tile index
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
		Seed:   seed*1000003 + int64(id),
	}
}

// Sampler returns a fresh sampler for the tile; the same tile always replays the same sequence
func (t *Tile) Sampler() core.Sampler {
	return core.NewSeededSampler(t.Seed)
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	if width <= 0 || height <= 0 || tileSize <= 0 {
		return nil
	}

	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	camera     Camera
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given camera and integrator
func NewTileRenderer(camera Camera, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		integrator: integratorInst,
	}
}

// RenderTileBounds takes samplesPerPixel samples for every pixel within bounds.
// pixelStats is indexed [y][x] in image coordinates; tiles never overlap, so
// concurrent calls with disjoint bounds may share it.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, samplesPerPixel int) RenderStats {
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy(), Tiles: 1}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ps := &pixelStats[j][i]
			for s := 0; s < samplesPerPixel; s++ {
				ray := tr.camera.GetRay(i, j, sampler)
				if ps.AddSample(tr.integrator.RayColor(ray, sampler)) {
					stats.TotalSamples++
				} else {
					stats.NonFiniteSamples++
				}
			}
		}
	}

	stats.finalize()
	return stats
}
