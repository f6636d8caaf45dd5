package video

import "fmt"

// coverSize scales (w, h) so it fully covers (targetW, targetH): the
// scale factor is the max of the width and height ratios, so the frame is
// always filled and edge content may be lost, never letterboxed.
func coverSize(w, h, targetW, targetH int) (int, int) {
	scaleW := float64(targetW) / float64(w)
	scaleH := float64(targetH) / float64(h)
	scale := scaleW
	if scaleH > scale {
		scale = scaleH
	}
	newW := int(float64(w)*scale + 0.5)
	newH := int(float64(h)*scale + 0.5)
	if newW < targetW {
		newW = targetW
	}
	if newH < targetH {
		newH = targetH
	}
	return newW, newH
}

// cropOffset returns the top-left corner of a centered targetW x targetH
// crop inside a scaled image.
func cropOffset(scaledW, scaledH, targetW, targetH int) (int, int) {
	return (scaledW - targetW) / 2, (scaledH - targetH) / 2
}

// coverCropFilter is the ffmpeg equivalent of coverSize + cropOffset.
func coverCropFilter(targetW, targetH int) string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d", targetW, targetH, targetW, targetH)
}
