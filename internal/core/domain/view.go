package domain

// RatingView is the read-model composite returned by rating queries: the
// rating with its event, issuer and factor details (concepts populated).
type RatingView struct {
	Rating  TaxRating      `json:"rating"`
	Event   CorporateEvent `json:"event"`
	Issuer  Issuer         `json:"issuer"`
	Details []FactorDetail `json:"details"`
}
