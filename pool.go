package certgen

import (
	"errors"
	"runtime"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps automatic sizing; decoded templates are held per render.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for image encoding.
	cpuDivisor = 2
)

// FacePool lends sized font faces to render workers.
// A face caches rasterized glyphs and must not be drawn from by two
// goroutines at once; a worker owns the face it borrowed until Release.
// Faces are built on demand, up to the pool capacity.
type FacePool struct {
	font   *opentype.Font
	points float64

	mu     sync.Mutex
	idle   chan font.Face // returned faces waiting for a borrower
	all    []font.Face    // every face built, closed by Close
	made   int            // faces built or being built
	closed bool
}

// NewFacePool returns a pool that builds at most n faces of the given
// point size. n below one is raised to one.
func NewFacePool(f *opentype.Font, size float64, n int) *FacePool {
	n = max(n, 1)
	return &FacePool{
		font:   f,
		points: size,
		idle:   make(chan font.Face, n),
		all:    make([]font.Face, 0, n),
	}
}

// Acquire borrows a face. An idle face is preferred; otherwise a new face
// is built while capacity remains, and once it is reached Acquire waits
// for a Release.
func (p *FacePool) Acquire() (font.Face, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	select {
	case face := <-p.idle:
		p.mu.Unlock()
		return face, nil
	default:
	}
	build := p.made < cap(p.idle)
	if build {
		p.made++
	}
	p.mu.Unlock()

	if build {
		return p.build()
	}

	face, ok := <-p.idle
	if !ok || p.isClosed() {
		return nil, ErrPoolClosed
	}
	return face, nil
}

// build creates a face for a slot reserved by Acquire.
// The slot is given back if the face cannot be created.
func (p *FacePool) build() (font.Face, error) {
	face, err := newFace(p.font, p.points)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.made--
		return nil, err
	}
	if p.closed {
		return nil, errors.Join(ErrPoolClosed, face.Close())
	}
	p.all = append(p.all, face)
	return face, nil
}

func (p *FacePool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Release hands a borrowed face back. After Close it is a no-op; the face
// was already closed with the rest.
func (p *FacePool) Release(face font.Face) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	// Never blocks: at most cap(idle) faces exist.
	p.idle <- face
}

// Close closes every face the pool built and wakes blocked borrowers.
// Faces still lent out are closed too, so callers finish rendering first.
// Calling Close again returns nil.
func (p *FacePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.idle)
	built := p.all
	p.all = nil
	p.mu.Unlock()

	errs := make([]error, 0, len(built))
	for _, face := range built {
		errs = append(errs, face.Close())
	}
	return errors.Join(errs...)
}

// Size returns how many faces the pool may build.
func (p *FacePool) Size() int {
	return cap(p.idle)
}

// ResolvePoolSize returns workers when set, otherwise half of GOMAXPROCS
// (container-aware through automaxprocs) within [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}
