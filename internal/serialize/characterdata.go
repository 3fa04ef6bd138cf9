package serialize

import (
	"fmt"

	"github.com/duskhaven/server/internal/net/packet"
)

// CharacterData is the persistent character payload carried inside an
// enter-world creation message, after the persistent ID and display name.
// Attribute bases travel as value*256 in a signed 32-bit field, the same
// fixed-point convention the client sync uses; modified values are not
// stored since they are recomputed from bases and modifiers on load.
type CharacterData struct {
	AccountLevel uint8
	HairStyle    uint8
	HairColor    uint8

	Points           int16
	CorrectionPoints int16

	MapID int32
	X     int32
	Y     int32

	Attributes  []AttributeValue
	KillCounts  []KillCount
	Abilities   []int32 // owned ability IDs, each fits one byte
	Possessions []SlotItem
}

type AttributeValue struct {
	ID   int32
	Base float64
}

type KillCount struct {
	TypeID int32
	Count  int32
}

type SlotItem struct {
	Slot   uint16
	ItemID uint32
	Amount uint16
}

// Write appends the payload to w.
func Write(w *packet.Writer, d *CharacterData) {
	w.WriteC(d.AccountLevel)
	w.WriteC(d.HairStyle)
	w.WriteC(d.HairColor)
	w.WriteH(uint16(d.Points))
	w.WriteH(uint16(d.CorrectionPoints))
	w.WriteD(d.MapID)
	w.WriteD(d.X)
	w.WriteD(d.Y)

	w.WriteH(uint16(len(d.Attributes)))
	for _, a := range d.Attributes {
		w.WriteH(uint16(a.ID))
		w.WriteD(int32(a.Base * 256))
	}

	w.WriteH(uint16(len(d.KillCounts)))
	for _, k := range d.KillCounts {
		w.WriteD(k.TypeID)
		w.WriteD(k.Count)
	}

	w.WriteH(uint16(len(d.Abilities)))
	for _, id := range d.Abilities {
		w.WriteC(uint8(id))
	}

	w.WriteH(uint16(len(d.Possessions)))
	for _, p := range d.Possessions {
		w.WriteH(p.Slot)
		w.WriteD(int32(p.ItemID))
		w.WriteH(p.Amount)
	}
}

// Read decodes a payload from r. Counts are validated against the bytes
// actually remaining so a truncated message fails instead of producing a
// phantom character.
func Read(r *packet.Reader) (*CharacterData, error) {
	d := &CharacterData{
		AccountLevel:     r.ReadC(),
		HairStyle:        r.ReadC(),
		HairColor:        r.ReadC(),
		Points:           int16(r.ReadH()),
		CorrectionPoints: int16(r.ReadH()),
		MapID:            r.ReadD(),
		X:                r.ReadD(),
		Y:                r.ReadD(),
	}

	nAttrs := int(r.ReadH())
	if r.Remaining() < nAttrs*6 {
		return nil, fmt.Errorf("character payload truncated: %d attributes, %d bytes left", nAttrs, r.Remaining())
	}
	d.Attributes = make([]AttributeValue, 0, nAttrs)
	for i := 0; i < nAttrs; i++ {
		id := int32(r.ReadH())
		base := float64(r.ReadD()) / 256
		d.Attributes = append(d.Attributes, AttributeValue{ID: id, Base: base})
	}

	nKills := int(r.ReadH())
	if r.Remaining() < nKills*8 {
		return nil, fmt.Errorf("character payload truncated: %d kill counts, %d bytes left", nKills, r.Remaining())
	}
	d.KillCounts = make([]KillCount, 0, nKills)
	for i := 0; i < nKills; i++ {
		d.KillCounts = append(d.KillCounts, KillCount{TypeID: r.ReadD(), Count: r.ReadD()})
	}

	nAbilities := int(r.ReadH())
	if r.Remaining() < nAbilities {
		return nil, fmt.Errorf("character payload truncated: %d abilities, %d bytes left", nAbilities, r.Remaining())
	}
	d.Abilities = make([]int32, 0, nAbilities)
	for i := 0; i < nAbilities; i++ {
		d.Abilities = append(d.Abilities, int32(r.ReadC()))
	}

	nItems := int(r.ReadH())
	if r.Remaining() < nItems*8 {
		return nil, fmt.Errorf("character payload truncated: %d possessions, %d bytes left", nItems, r.Remaining())
	}
	d.Possessions = make([]SlotItem, 0, nItems)
	for i := 0; i < nItems; i++ {
		d.Possessions = append(d.Possessions, SlotItem{
			Slot:   r.ReadH(),
			ItemID: uint32(r.ReadD()),
			Amount: r.ReadH(),
		})
	}

	return d, nil
}
