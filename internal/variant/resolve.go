package variant

// Resolved holds the assets a combination inherits from its image attribute value.
type Resolved struct {
	Images  []string
	Primary string
	Color   string
}

// ResolveAssets looks up the registry using the combination's value for the
// image attribute. Every combination with the same value gets the same list.
func ResolveAssets(c Combination, reg AssetRegistry) Resolved {
	if reg.Attribute() == "" {
		return Resolved{}
	}
	val, ok := c[reg.Attribute()]
	if !ok {
		return Resolved{}
	}
	var res Resolved
	if va, ok := reg.Lookup(val); ok {
		res.Images = va.Images
	}
	if len(res.Images) > 0 {
		res.Primary = res.Images[0]
	}
	res.Color = reg.ColorFor(val)
	return res
}

// Apply writes the resolved assets onto v, replacing whatever it carried.
func (r Resolved) Apply(v Variant) Variant {
	v.Images = append([]string(nil), r.Images...)
	v.Primary = r.Primary
	v.Color = r.Color
	return v
}
