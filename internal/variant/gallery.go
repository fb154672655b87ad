package variant

// Gallery flattens product-level images followed by every variant's images,
// keeping the first occurrence of each URL.
func Gallery(productImages []string, variants []Variant) []string {
	all := append([]string(nil), productImages...)
	for _, v := range variants {
		all = append(all, v.Images...)
	}
	return dedupe(all)
}

// GalleryIndex is the position of v's first image inside gallery, or -1.
func GalleryIndex(gallery []string, v Variant) int {
	first := v.Primary
	if first == "" && len(v.Images) > 0 {
		first = v.Images[0]
	}
	if first == "" {
		return -1
	}
	for i, u := range gallery {
		if u == first {
			return i
		}
	}
	return -1
}
