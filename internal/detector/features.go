package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// siftDetector implements Detector with OpenCV's SIFT.
type siftDetector struct {
	sift *gocv.SIFT
	mu   sync.Mutex
}

// Detect extracts SIFT keypoints and 128-float descriptors.
func (d *siftDetector) Detect(img gocv.Mat) (*Features, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := d.sift.DetectAndCompute(img, mask)
	return &Features{Keypoints: kps, Descriptors: desc}, nil
}

// Close releases the SIFT instance.
func (d *siftDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sift.Close()
}

// orbDetector implements Detector with OpenCV's ORB.
type orbDetector struct {
	orb *gocv.ORB
	mu  sync.Mutex
}

// Detect extracts ORB keypoints and 32-byte binary descriptors.
func (d *orbDetector) Detect(img gocv.Mat) (*Features, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := d.orb.DetectAndCompute(img, mask)
	return &Features{Keypoints: kps, Descriptors: desc}, nil
}

// Close releases the ORB instance.
func (d *orbDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.orb.Close()
}
