// Package dictionary loads the CM93 object-class and attribute acronym
// tables from the CM93OBJ.DIC and CM93ATTR.DIC text files found under a
// chart database root.
package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ObjectClass describes one CM93 object class definition from CM93OBJ.DIC.
type ObjectClass struct {
	Code         uint16
	Acronym      string
	Name         string
	GeometryMask uint8
}

// Attribute describes one CM93 attribute definition from CM93ATTR.DIC.
// Type is one of A (string), I (int), F (float), E (enum), L (list).
type Attribute struct {
	Code    uint16
	Acronym string
	Type    byte
}

// Dictionary holds both lookup tables, indexed by code and by acronym.
type Dictionary struct {
	objects          map[uint16]ObjectClass
	objectsByAcronym map[string]uint16
	attributes       map[uint16]Attribute
	attrsByAcronym   map[string]uint16
}

// Load parses CM93OBJ.DIC and CM93ATTR.DIC from root.
func Load(root string) (*Dictionary, error) {
	d := &Dictionary{
		objects:          make(map[uint16]ObjectClass),
		objectsByAcronym: make(map[string]uint16),
		attributes:       make(map[uint16]Attribute),
		attrsByAcronym:   make(map[string]uint16),
	}
	if err := d.loadObjects(filepath.Join(root, "CM93OBJ.DIC")); err != nil {
		return nil, err
	}
	if err := d.loadAttributes(filepath.Join(root, "CM93ATTR.DIC")); err != nil {
		return nil, err
	}
	return d, nil
}

func skippableLine(line string) bool {
	return line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";")
}

func (d *Dictionary) loadObjects(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dictionary: opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if skippableLine(line) {
			continue
		}
		parts := strings.SplitN(line, ",", 4)
		if len(parts) < 3 {
			continue
		}
		code, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
		if err != nil {
			continue
		}
		acronym := strings.TrimSpace(parts[1])
		name := strings.TrimSpace(parts[2])
		var geomMask uint64 = 7 // default: all geometry types
		if len(parts) == 4 {
			if v, err := strconv.ParseUint(strings.TrimSpace(parts[3]), 10, 8); err == nil {
				geomMask = v
			}
		}
		oc := ObjectClass{Code: uint16(code), Acronym: acronym, Name: name, GeometryMask: uint8(geomMask)}
		d.objects[oc.Code] = oc
		d.objectsByAcronym[acronym] = oc.Code
	}
	return scanner.Err()
}

func (d *Dictionary) loadAttributes(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dictionary: opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if skippableLine(line) {
			continue
		}
		parts := strings.SplitN(line, ",", 3)
		if len(parts) < 3 {
			continue
		}
		code, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
		if err != nil {
			continue
		}
		acronym := strings.TrimSpace(parts[1])
		typeField := strings.TrimSpace(parts[2])
		attrType := byte('A')
		if len(typeField) > 0 {
			attrType = typeField[0]
		}
		attr := Attribute{Code: uint16(code), Acronym: acronym, Type: attrType}
		d.attributes[attr.Code] = attr
		d.attrsByAcronym[acronym] = attr.Code
	}
	return scanner.Err()
}

// Object looks up an object class by its CM93 numeric code.
func (d *Dictionary) Object(code uint16) (ObjectClass, bool) {
	oc, ok := d.objects[code]
	return oc, ok
}

// ObjectByAcronym looks up an object class by its S57-style acronym.
func (d *Dictionary) ObjectByAcronym(acronym string) (ObjectClass, bool) {
	code, ok := d.objectsByAcronym[acronym]
	if !ok {
		return ObjectClass{}, false
	}
	return d.Object(code)
}

// Attribute looks up an attribute definition by its CM93 numeric code.
func (d *Dictionary) Attribute(code uint16) (Attribute, bool) {
	a, ok := d.attributes[code]
	return a, ok
}

// AttributeByAcronym looks up an attribute definition by acronym.
func (d *Dictionary) AttributeByAcronym(acronym string) (Attribute, bool) {
	code, ok := d.attrsByAcronym[acronym]
	if !ok {
		return Attribute{}, false
	}
	return d.Attribute(code)
}

// Acronym returns the acronym for an object class code, or a generic
// OBJL_<code> placeholder when the code is not present in the dictionary.
func (d *Dictionary) Acronym(code uint16) string {
	if oc, ok := d.objects[code]; ok {
		return oc.Acronym
	}
	return fmt.Sprintf("OBJL_%d", code)
}

// AttrAcronym returns the acronym for an attribute code, or a generic
// ATTR_<code> placeholder when the code is not present in the dictionary.
func (d *Dictionary) AttrAcronym(code uint16) string {
	if a, ok := d.attributes[code]; ok {
		return a.Acronym
	}
	return fmt.Sprintf("ATTR_%d", code)
}

// Well-known CM93 object class codes, used directly by classification
// logic that must run even without a loaded Dictionary.
const (
	ObjAirare uint16 = 1
	ObjAcharE uint16 = 4
	ObjBcnCar uint16 = 5
	ObjBcnIsd uint16 = 6
	ObjBcnLat uint16 = 7
	ObjBcnSaw uint16 = 8
	ObjBcnSpp uint16 = 9
	ObjBuiSgl uint16 = 13
	ObjBuaAre uint16 = 14
	ObjBoyCar uint16 = 15
	ObjBoyIsd uint16 = 17
	ObjBoyLat uint16 = 18
	ObjBoySaw uint16 = 19
	ObjBoySpp uint16 = 20
	ObjCtnAre uint16 = 29
	ObjCoalne uint16 = 35
	ObjCblSub uint16 = 22
	ObjCblOhd uint16 = 21
	ObjDepAre uint16 = 44
	ObjDepCnt uint16 = 45
	ObjDrgAre uint16 = 50
	ObjFairwy uint16 = 57
	ObjBridge uint16 = 11
	ObjLndAre uint16 = 81
	ObjLndElv uint16 = 82
	ObjLndRgn uint16 = 83
	ObjLights uint16 = 86
	ObjNavLne uint16 = 98
	ObjObstrn uint16 = 99
	ObjPilBop uint16 = 104
	ObjPipSol uint16 = 107
	ObjRivers uint16 = 129
	ObjResAre uint16 = 128
	ObjSbdAre uint16 = 138
	ObjSeaAre uint16 = 136
	ObjSlcons uint16 = 139
	ObjSoundg uint16 = 147
	ObjTsslPt uint16 = 162
	ObjTsezNe uint16 = 164
	ObjUwTroc uint16 = 168
	ObjVegAre uint16 = 169
	ObjWrecks uint16 = 176
	ObjItdAre uint16 = 78
)

// Well-known CM93 attribute codes.
const (
	AttrColour uint16 = 75
	AttrDrval1 uint16 = 87
	AttrDrval2 uint16 = 88
	AttrHeight uint16 = 95
	AttrLitchr uint16 = 107
	AttrLitvis uint16 = 108
	AttrObjnam uint16 = 116
	AttrOrient uint16 = 117
	AttrPerend uint16 = 119
	AttrPersta uint16 = 120
	AttrQuasou uint16 = 127
	AttrScamin uint16 = 133
	AttrScamax uint16 = 134
	AttrSigfrq uint16 = 140
	AttrSigper uint16 = 142
	AttrValdco uint16 = 170
	AttrValsou uint16 = 172
	AttrWatlev uint16 = 187
)
