package covkit

// Bounds represents an envelope in the order minx,miny,maxx,maxy. When the
// x axis wraps around, minx > maxx denotes a box crossing the anti-meridian.
type Bounds [4]float64

func (b Bounds) MinX() float64 {
	return b[0]
}

func (b Bounds) MinY() float64 {
	return b[1]
}

func (b Bounds) MaxX() float64 {
	return b[2]
}

func (b Bounds) MaxY() float64 {
	return b[3]
}

// Envelope2D returns these bounds as an Envelope2D in the given crs.
func (b Bounds) Envelope2D(crs AxisMetadata) (Envelope2D, error) {
	return Envelope2DFromBounds(crs, b.MinX(), b.MinY(), b.MaxX(), b.MaxY())
}
