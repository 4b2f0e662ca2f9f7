// Package roster defines the canonical player record and merges the save's
// identity and attribute tables into it.
//
// Player is the contract between the importer and the persistence gateway:
// the normalizer produces it, the gateway stores and returns it, and the query
// handlers format it.
package roster

import (
	"fmt"
	"strconv"
	"strings"
)

// UnknownPrefix marks a synthetic first name assigned when resolution failed.
const UnknownPrefix = "Unknown_"

// Attribute floors. Ceilings are deliberately not enforced on import.
const (
	MinRating = 40
	MinAge    = 16
)

// Player is the persisted, merged representation of one player.
type Player struct {
	PlayerID   int     `json:"playerid"`
	FirstName  string  `json:"firstname"`
	Surname    string  `json:"surname"`
	CommonName *string `json:"commonname,omitempty"`

	OverallRating int `json:"overallrating"`
	Potential     int `json:"potential"`

	Age    int  `json:"age"`
	Height *int `json:"height,omitempty"` // cm
	Weight *int `json:"weight,omitempty"` // kg

	PreferredPosition1 *string `json:"preferredposition1,omitempty"`
	WeakFoot           *int    `json:"weakfootabilitytypecode,omitempty"` // 1-5
	SkillMoves         *int    `json:"skillmoves,omitempty"`              // 1-5
	Value              *int    `json:"value,omitempty"`

	Nationality *int `json:"nationality,omitempty"`
	Birthdate   *int `json:"birthdate,omitempty"` // days since the game's epoch
}

// UnknownName returns the placeholder first name for a player id.
func UnknownName(playerID int) string {
	return UnknownPrefix + strconv.Itoa(playerID)
}

// IsNamed reports whether the player carries a real (resolved) first name.
func (p Player) IsNamed() bool {
	return p.FirstName != "" && !strings.HasPrefix(p.FirstName, UnknownPrefix)
}

// FullName prefers the common name, then "first surname".
func (p Player) FullName() string {
	if p.CommonName != nil && *p.CommonName != "" {
		return *p.CommonName
	}
	return strings.TrimSpace(p.FirstName + " " + p.Surname)
}

// DisplayName returns the real name, or "Player #<id>" for placeholder names.
func (p Player) DisplayName() string {
	if p.IsNamed() {
		return p.FullName()
	}
	return fmt.Sprintf("Player #%d", p.PlayerID)
}

// Position returns the preferred position or fallback.
func (p Player) Position(fallback string) string {
	if p.PreferredPosition1 == nil || *p.PreferredPosition1 == "" {
		return fallback
	}
	return *p.PreferredPosition1
}

// Growth is the gap between potential and the current overall rating.
func (p Player) Growth() int {
	return p.Potential - p.OverallRating
}

// DetailedDisplay renders "Name (OVR 85, ST)".
func (p Player) DetailedDisplay() string {
	ovr := "OVR ?"
	if p.OverallRating > 0 {
		ovr = fmt.Sprintf("OVR %d", p.OverallRating)
	}
	return fmt.Sprintf("%s (%s, %s)", p.DisplayName(), ovr, p.Position("?"))
}

// Summary is the single-line detail card used by the player lookup answer.
func (p Player) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (ID %d) - %s, %d anos, OVR %d → POT %d",
		p.DisplayName(), p.PlayerID, p.Position("N/A"), p.Age, p.OverallRating, p.Potential)
	if p.Height != nil && p.Weight != nil {
		fmt.Fprintf(&b, ", %dcm/%dkg", *p.Height, *p.Weight)
	}
	if p.SkillMoves != nil {
		fmt.Fprintf(&b, ", dribles %d★", *p.SkillMoves)
	}
	if p.WeakFoot != nil {
		fmt.Fprintf(&b, ", perna ruim %d★", *p.WeakFoot)
	}
	if p.Value != nil {
		fmt.Fprintf(&b, ", valor %d", *p.Value)
	}
	return b.String()
}

// positionLabels maps the save's numeric position codes to their labels.
var positionLabels = []string{
	"GK", "SW", "RWB", "RB", "RCB", "CB", "LCB", "LB", "LWB",
	"RDM", "CDM", "LDM", "RM", "RCM", "CM", "LCM", "LM",
	"RAM", "CAM", "LAM", "RF", "CF", "LF", "RW", "RS", "ST", "LS", "LW",
}

// PositionLabel converts a numeric position code to its label. Unknown codes
// are returned in decimal form.
func PositionLabel(code int) string {
	if code >= 0 && code < len(positionLabels) {
		return positionLabels[code]
	}
	return strconv.Itoa(code)
}
