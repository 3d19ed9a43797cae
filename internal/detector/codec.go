package detector

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gocv.io/x/gocv"
)

// ErrCorruptTemplate is returned when a stored descriptor blob does not describe a
// descriptor matrix.
var ErrCorruptTemplate = errors.New("corrupt descriptor template")

// encodedDescriptors is the stored form of a descriptor matrix.
type encodedDescriptors struct {
	Rows int    `cbor:"1,keyasint"`
	Cols int    `cbor:"2,keyasint"`
	Type int    `cbor:"3,keyasint"`
	Data []byte `cbor:"4,keyasint"`
}

// elemSize returns the bytes per element of the descriptor types SIFT and ORB produce.
func elemSize(t gocv.MatType) (int, bool) {
	switch t {
	case gocv.MatTypeCV8U:
		return 1, true
	case gocv.MatTypeCV32F:
		return 4, true
	default:
		return 0, false
	}
}

// validate checks that Data holds exactly Rows x Cols elements of Type.
func (e encodedDescriptors) validate() error {
	size, ok := elemSize(gocv.MatType(e.Type))
	if !ok {
		return fmt.Errorf("%w: type %d", ErrCorruptTemplate, e.Type)
	}
	rowBytes := e.Cols * size
	if rowBytes <= 0 || rowBytes/size != e.Cols || len(e.Data)%rowBytes != 0 || len(e.Data)/rowBytes != e.Rows {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrCorruptTemplate, len(e.Data), e.Rows, e.Cols)
	}
	return nil
}

// EncodeDescriptors serializes a descriptor matrix to CBOR.
func EncodeDescriptors(m gocv.Mat) ([]byte, error) {
	if m.Empty() {
		return nil, ErrNoFeatures
	}

	src := m
	if !m.IsContinuous() {
		src = m.Clone()
		defer src.Close()
	}

	data, err := cbor.Marshal(encodedDescriptors{
		Rows: src.Rows(),
		Cols: src.Cols(),
		Type: int(src.Type()),
		Data: src.ToBytes(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode descriptors: %w", err)
	}
	return data, nil
}

// DecodeDescriptors restores a descriptor matrix written by EncodeDescriptors.
// The caller is responsible for closing the returned Mat.
func DecodeDescriptors(data []byte) (gocv.Mat, error) {
	var enc encodedDescriptors
	if err := cbor.Unmarshal(data, &enc); err != nil {
		return gocv.NewMat(), fmt.Errorf("decode descriptors: %w", err)
	}
	if enc.Rows <= 0 || enc.Cols <= 0 || len(enc.Data) == 0 {
		return gocv.NewMat(), ErrNoFeatures
	}
	if err := enc.validate(); err != nil {
		return gocv.NewMat(), fmt.Errorf("decode descriptors: %w", err)
	}

	view, err := gocv.NewMatFromBytes(enc.Rows, enc.Cols, gocv.MatType(enc.Type), enc.Data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decode descriptors: %w", err)
	}
	defer view.Close()

	return view.Clone(), nil
}
