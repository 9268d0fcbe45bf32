package atlas

import (
	"fmt"
	"math"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/npillmayer/glyphatlas/engine/raster"
)

// Rect is a rectangle of atlas pixels, [Left,Right) × [Bottom,Top).
type Rect struct {
	Left, Bottom, Right, Top int
}

// Width of the rectangle.
func (r Rect) Width() int {
	return r.Right - r.Left
}

// Height of the rectangle.
func (r Rect) Height() int {
	return r.Top - r.Bottom
}

// Area of the rectangle.
func (r Rect) Area() int {
	return r.Width() * r.Height()
}

// Overlaps is true if r and s share at least one pixel.
func (r Rect) Overlaps(s Rect) bool {
	return r.Left < s.Right && s.Left < r.Right && r.Bottom < s.Top && s.Bottom < r.Top
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d)×[%d,%d)", r.Left, r.Right, r.Bottom, r.Top)
}

// --- Packing tree ----------------------------------------------------------

const none int32 = -1

// node is a node of the packing tree. A node is either a free leaf, an
// occupied leaf or has two children covering its rectangle.
type node struct {
	rect     Rect
	occupied bool
	child1   int32
	child2   int32
	item     int
}

// Packer places rectangles into a square region by recursive guillotine
// splits. Nodes live in a single slice and refer to their children by index.
//
// A Packer is not safe for concurrent use.
type Packer struct {
	nodes []node
}

// Placement is the position of an item in the packed region.
type Placement struct {
	Rect
	Item   int            // item number given to Insert
	Bitmap *raster.Bitmap // set by Pack
}

// NewPacker creates a packer for a square region of the given side length.
func NewPacker(side int) *Packer {
	p := &Packer{nodes: make([]node, 0, 64)}
	p.newNode(Rect{Right: side, Top: side})
	return p
}

func (p *Packer) newNode(r Rect) int32 {
	p.nodes = append(p.nodes, node{rect: r, child1: none, child2: none, item: -1})
	return int32(len(p.nodes) - 1)
}

// Insert places a w × h rectangle for item. Subtrees are tried first-fit,
// child1 before child2. It returns false if there is no room for the
// rectangle.
func (p *Packer) Insert(w, h, item int) (Rect, bool) {
	if w < 0 || h < 0 {
		return Rect{}, false
	}
	n := p.insert(0, w, h, item)
	if n == none {
		return Rect{}, false
	}
	return p.nodes[n].rect, true
}

func (p *Packer) insert(n int32, w, h, item int) int32 {
	if p.nodes[n].child1 != none {
		if found := p.insert(p.nodes[n].child1, w, h, item); found != none {
			return found
		}
		return p.insert(p.nodes[n].child2, w, h, item)
	}
	r := p.nodes[n].rect
	if p.nodes[n].occupied || r.Width() < w || r.Height() < h {
		return none
	}
	if r.Width() == w && r.Height() == h {
		p.nodes[n].occupied = true
		p.nodes[n].item = item
		return n
	}
	var r1, r2 Rect
	if dw, dh := r.Width()-w, r.Height()-h; dw > dh {
		r1 = Rect{Left: r.Left, Bottom: r.Bottom, Right: r.Left + w, Top: r.Top}
		r2 = Rect{Left: r.Left + w, Bottom: r.Bottom, Right: r.Right, Top: r.Top}
	} else {
		r1 = Rect{Left: r.Left, Bottom: r.Bottom, Right: r.Right, Top: r.Bottom + h}
		r2 = Rect{Left: r.Left, Bottom: r.Bottom + h, Right: r.Right, Top: r.Top}
	}
	c1 := p.newNode(r1)
	c2 := p.newNode(r2)
	p.nodes[n].child1, p.nodes[n].child2 = c1, c2
	return p.insert(c1, w, h, item)
}

// Placements lists the occupied rectangles in postorder: child1, child2,
// then the node itself.
func (p *Packer) Placements() []Placement {
	var pl []Placement
	var walk func(n int32)
	walk = func(n int32) {
		nd := p.nodes[n]
		if nd.child1 != none {
			walk(nd.child1)
			walk(nd.child2)
		}
		if nd.occupied {
			pl = append(pl, Placement{Rect: nd.rect, Item: nd.item})
		}
	}
	walk(0)
	return pl
}

// --- Packing bitmaps -------------------------------------------------------

// packingOrder returns the indices of bitmaps by descending area. Bitmaps of
// equal area keep their relative order.
func packingOrder(bitmaps []*raster.Bitmap) []int {
	heap := binaryheap.NewWith(func(a, b interface{}) int {
		i, j := a.(int), b.(int)
		if d := bitmaps[j].Area() - bitmaps[i].Area(); d != 0 {
			return d
		}
		return i - j
	})
	for i := range bitmaps {
		heap.Push(i)
	}
	order := make([]int, 0, len(bitmaps))
	for v, ok := heap.Pop(); ok; v, ok = heap.Pop() {
		order = append(order, v.(int))
	}
	return order
}

// packingSlack is the area added to the sum of the bitmap areas when
// estimating the side of the packing region.
const packingSlack = 1.25

// initialSide estimates the side of a square holding all bitmaps.
func initialSide(bitmaps []*raster.Bitmap) int {
	side, total := 1, 0
	for _, bmp := range bitmaps {
		side = max(side, bmp.Width, bmp.Height)
		total += bmp.Area()
	}
	return max(side, int(math.Ceil(math.Sqrt(float64(total)*packingSlack))))
}

// Pack places bitmaps without overlap. The packing region starts as a square
// estimated from the bitmap areas and is doubled, up to maxSide, as long as
// bitmaps are left over. Bitmaps not fitting into a region of maxSide are
// returned as overflow.
//
// Placements are in postorder of the packing tree. Bitmaps with zero area are
// placed at the origin without taking up room. The width and height returned
// are the extent of the placed bitmaps.
func Pack(bitmaps []*raster.Bitmap, maxSide int) ([]Placement, int, int, []*raster.Bitmap) {
	var empty, sized []int
	for _, i := range packingOrder(bitmaps) {
		if bitmaps[i].Area() == 0 {
			empty = append(empty, i)
		} else {
			sized = append(sized, i)
		}
	}
	side := min(initialSide(bitmaps), maxSide)
	var packer *Packer
	var overflow []int
	for {
		packer, overflow = NewPacker(side), overflow[:0]
		for _, i := range sized {
			if _, ok := packer.Insert(bitmaps[i].Width, bitmaps[i].Height, i); !ok {
				overflow = append(overflow, i)
			}
		}
		if len(overflow) == 0 || side >= maxSide {
			break
		}
		tracer().Debugf("%d bitmaps do not fit into %d×%d, retrying", len(overflow), side, side)
		side = min(2*side, maxSide)
	}
	placements := packer.Placements()
	for _, i := range empty {
		placements = append(placements, Placement{
			Rect: Rect{Right: bitmaps[i].Width, Top: bitmaps[i].Height},
			Item: i,
		})
	}
	w, h := 0, 0
	for k := range placements {
		placements[k].Bitmap = bitmaps[placements[k].Item]
		w = max(w, placements[k].Right)
		h = max(h, placements[k].Top)
	}
	var rest []*raster.Bitmap
	for _, i := range overflow {
		rest = append(rest, bitmaps[i])
	}
	return placements, w, h, rest
}

// Blit copies the bitmaps of placements into a new w × h buffer, row by row.
func Blit(placements []Placement, w, h int) []byte {
	pix := make([]byte, w*h)
	for _, pl := range placements {
		bw := pl.Width()
		for j := 0; j < pl.Height(); j++ {
			dst := (pl.Bottom+j)*w + pl.Left
			copy(pix[dst:dst+bw], pl.Bitmap.Pix[j*bw:(j+1)*bw])
		}
	}
	return pix
}
