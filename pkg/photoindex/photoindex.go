// Package photoindex keeps search results in an R-Tree so they can be
// queried offline by box, radius or proximity.
package photoindex

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/1F47E/geo-photo-search/pkg/geo"
	"github.com/1F47E/geo-photo-search/pkg/models"
	"github.com/dhconnelly/rtreego"
)

const (
	tolerance   = 0.0001
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

// spatialPhoto wraps a photo to implement rtreego.Spatial interface
type spatialPhoto struct {
	*models.Photo
	rect rtreego.Rect
}

func (sp *spatialPhoto) Bounds() rtreego.Rect {
	return sp.rect
}

// Index is a thread-safe R-Tree of photos partitioned into longitude bands
type Index struct {
	partitions      []*rtreego.Rtree
	partitionBounds []models.BoundingBox
	numPartitions   int

	mu    sync.RWMutex
	items map[string]*models.Photo
}

// New creates an index with one partition per CPU
func New() *Index {
	return NewWithPartitions(runtime.NumCPU())
}

// NewWithPartitions creates an index with the given number of longitude bands
func NewWithPartitions(numPartitions int) *Index {
	if numPartitions <= 0 {
		numPartitions = runtime.NumCPU()
	}

	idx := &Index{
		partitions:      make([]*rtreego.Rtree, numPartitions),
		partitionBounds: make([]models.BoundingBox, numPartitions),
		numPartitions:   numPartitions,
		items:           make(map[string]*models.Photo),
	}

	lonRange := 360.0 / float64(numPartitions)
	for i := 0; i < numPartitions; i++ {
		idx.partitions[i] = rtreego.NewTree(dimensions, minChildren, maxChildren)

		minLon := -180.0 + float64(i)*lonRange
		maxLon := minLon + lonRange
		if i == numPartitions-1 {
			maxLon = 180.0
		}
		idx.partitionBounds[i] = models.NewBoundingBox(-90, 90, minLon, maxLon)
	}
	return idx
}

func (idx *Index) partitionFor(lon float64) int {
	p := int((lon + 180.0) / (360.0 / float64(idx.numPartitions)))
	if p >= idx.numPartitions {
		p = idx.numPartitions - 1
	}
	if p < 0 {
		p = 0
	}
	return p
}

// IndexPhotos adds photos that carry coordinates. Photos already present
// (same Key) and photos without a location are skipped. It returns the
// number of photos added.
func (idx *Index) IndexPhotos(photos []*models.Photo) int {
	if len(photos) == 0 {
		return 0
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	grouped := make([][]*spatialPhoto, idx.numPartitions)
	added := 0
	for _, photo := range photos {
		if photo == nil || photo.Location == nil {
			continue
		}
		key := photo.Key()
		if key == "" {
			continue
		}
		if _, exists := idx.items[key]; exists {
			continue
		}
		idx.items[key] = photo

		p := rtreego.Point{photo.Location.Lat, photo.Location.Lon}
		sp := &spatialPhoto{Photo: photo, rect: p.ToRect(tolerance)}
		part := idx.partitionFor(photo.Location.Lon)
		grouped[part] = append(grouped[part], sp)
		added++
	}

	var wg sync.WaitGroup
	for i, items := range grouped {
		if len(items) == 0 {
			continue
		}
		wg.Add(1)
		go func(tree *rtreego.Rtree, items []*spatialPhoto) {
			defer wg.Done()
			for _, item := range items {
				tree.Insert(item)
			}
		}(idx.partitions[i], items)
	}
	wg.Wait()

	return added
}

// searchPartitions runs a rect search on every partition overlapping box in
// parallel and keeps the photos accepted by keep. Callers hold the read lock.
func (idx *Index) searchPartitions(box models.BoundingBox, keep func(*models.Photo) bool) []*models.Photo {
	bounds, err := rtreego.NewRectFromPoints(
		rtreego.Point{box.MinLat(), box.MinLon()},
		rtreego.Point{box.MaxLat(), box.MaxLon()},
	)
	if err != nil {
		return nil
	}

	relevant := idx.relevantPartitions(box)
	resultsChan := make(chan []*models.Photo, len(relevant))
	for _, partitionIdx := range relevant {
		go func(tree *rtreego.Rtree) {
			var photos []*models.Photo
			for _, result := range tree.SearchIntersect(bounds) {
				item, ok := result.(*spatialPhoto)
				if !ok || item.Photo == nil || item.Photo.Location == nil {
					continue
				}
				if keep(item.Photo) {
					photos = append(photos, item.Photo)
				}
			}
			resultsChan <- photos
		}(idx.partitions[partitionIdx])
	}

	var all []*models.Photo
	for range relevant {
		all = append(all, <-resultsChan...)
	}
	return all
}

// QueryBox returns all photos within the given bounding box
func (idx *Index) QueryBox(box models.BoundingBox) ([]*models.Photo, error) {
	if box.MaxLat() < box.MinLat() || box.MaxLon() < box.MinLon() {
		return nil, ErrInvalidBox
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.searchPartitions(box, func(p *models.Photo) bool {
		return box.Contains(*p.Location)
	}), nil
}

// QueryRadius returns all photos within radiusKm of center
func (idx *Index) QueryRadius(center models.Location, radiusKm float64) ([]*models.Photo, error) {
	if radiusKm < 0 {
		return nil, ErrInvalidRadius
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	// Convert radius to degrees (approximate)
	deg := (radiusKm / earthRadius) * (180 / math.Pi)
	// longitude degrees shrink towards the poles
	lonDeg := 180.0
	if c := math.Cos(center.Lat * math.Pi / 180); c > 1e-9 {
		lonDeg = math.Min(deg/c, 180)
	}
	keep := func(p *models.Photo) bool {
		return geo.Distance(center.Lat, center.Lon, p.Location.Lat, p.Location.Lon) <= radiusKm
	}

	var results []*models.Photo
	for _, lons := range wrapLon(center.Lon-lonDeg, center.Lon+lonDeg) {
		box := models.NewBoundingBox(center.Lat-deg, center.Lat+deg, lons[0], lons[1])
		results = append(results, idx.searchPartitions(box, keep)...)
	}
	return results, nil
}

// wrapLon splits a longitude range that crosses the antimeridian into
// non-overlapping ranges inside [-180, 180]
func wrapLon(minLon, maxLon float64) [][2]float64 {
	if maxLon-minLon >= 360 {
		return [][2]float64{{-180, 180}}
	}
	switch {
	case minLon < -180:
		return [][2]float64{{-180, maxLon}, {minLon + 360, 180}}
	case maxLon > 180:
		return [][2]float64{{minLon, 180}, {-180, maxLon - 360}}
	}
	return [][2]float64{{minLon, maxLon}}
}

// NearestNeighbors returns the n photos closest to center, nearest first
func (idx *Index) NearestNeighbors(center models.Location, n int) []*models.Photo {
	if n <= 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type nearestResult struct {
		photo    *models.Photo
		distance float64
	}

	resultsChan := make(chan []nearestResult, idx.numPartitions)
	for i := 0; i < idx.numPartitions; i++ {
		go func(tree *rtreego.Rtree) {
			candidates := tree.NearestNeighbors(n, rtreego.Point{center.Lat, center.Lon})
			out := make([]nearestResult, 0, len(candidates))
			for _, c := range candidates {
				sp, ok := c.(*spatialPhoto)
				if !ok || sp == nil {
					continue
				}
				out = append(out, nearestResult{
					photo:    sp.Photo,
					distance: geo.Distance(center.Lat, center.Lon, sp.Location.Lat, sp.Location.Lon),
				})
			}
			resultsChan <- out
		}(idx.partitions[i])
	}

	var all []nearestResult
	for i := 0; i < idx.numPartitions; i++ {
		all = append(all, <-resultsChan...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].distance < all[j].distance })
	if len(all) > n {
		all = all[:n]
	}

	photos := make([]*models.Photo, len(all))
	for i, r := range all {
		photos[i] = r.photo
	}
	return photos
}

// Count returns the number of indexed photos
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.items)
}

// All returns every indexed photo in no particular order
func (idx *Index) All() []*models.Photo {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	photos := make([]*models.Photo, 0, len(idx.items))
	for _, p := range idx.items {
		photos = append(photos, p)
	}
	return photos
}

// Clear removes all photos from the index
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i := range idx.partitions {
		idx.partitions[i] = rtreego.NewTree(dimensions, minChildren, maxChildren)
	}
	idx.items = make(map[string]*models.Photo)
}

// relevantPartitions returns the indices of partitions whose longitude band
// intersects the box
func (idx *Index) relevantPartitions(box models.BoundingBox) []int {
	var relevant []int
	for i, bounds := range idx.partitionBounds {
		if box.MinLon() <= bounds.MaxLon() && box.MaxLon() >= bounds.MinLon() {
			relevant = append(relevant, i)
		}
	}
	return relevant
}
