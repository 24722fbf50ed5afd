package models

import "encoding/json"

// Content rows decoded without an "active" key are visible, matching the
// column default.

func (t *Testimonial) UnmarshalJSON(data []byte) error {
	type plain Testimonial
	p := plain{Active: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Testimonial(p)
	return nil
}

func (b *Banner) UnmarshalJSON(data []byte) error {
	type plain Banner
	p := plain{Active: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Banner(p)
	return nil
}

func (s *Sponsor) UnmarshalJSON(data []byte) error {
	type plain Sponsor
	p := plain{Active: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Sponsor(p)
	return nil
}
