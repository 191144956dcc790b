// Package locale supplies the localized strings used in instruction text and
// announcements.
//
// Message keys are the English phrases themselves (see the Key constants), so
// an untranslated key prints as English. The built-in catalog carries French,
// German and Spanish translations; any other language falls back to English.
package locale

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/katalvlaran/trailnav/network"
)

// Translator formats localized messages by key.
type Translator interface {
	// Sprintf formats the message registered under key with args.
	Sprintf(key string, args ...any) string
	// Language returns the BCP 47 tag of the messages produced.
	Language() string
}

// Message keys.
const (
	KeyHead   = "Head %s"
	KeyHeadOn = "Head %s on %s"
	KeyOnto   = "%s onto %s"
	KeyThen   = "%s, then %s %s"
	KeyArrive = "Arrive at your destination"

	KeyStraight    = "Continue straight"
	KeyTurnLeft    = "Turn left"
	KeyTurnRight   = "Turn right"
	KeySlightLeft  = "Turn slightly left"
	KeySlightRight = "Turn slightly right"
	KeySharpLeft   = "Turn sharply left"
	KeySharpRight  = "Turn sharply right"
	KeyUTurn       = "Make a U-turn"

	KeyWalk  = "walk"
	KeyCycle = "cycle"
	KeyDrive = "drive"

	KeyMeters     = "%.0f m"
	KeyKilometers = "%.1f km"

	KeyOffRoute      = "You are off route"
	KeyRouteReplaced = "Route updated"
)

// Cardinal direction keys, as returned by geo.Cardinal.
var cardinals = []string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}

var supported = []language.Tag{language.English, language.French, language.German, language.Spanish}

var translations = map[language.Tag]map[string]string{
	language.French: {
		KeyHead:          "Dirigez-vous vers le %s",
		KeyHeadOn:        "Dirigez-vous vers le %s sur %s",
		KeyOnto:          "%s sur %s",
		KeyThen:          "%s, puis %s sur %s",
		KeyArrive:        "Vous êtes arrivé à destination",
		KeyStraight:      "Continuez tout droit",
		KeyTurnLeft:      "Tournez à gauche",
		KeyTurnRight:     "Tournez à droite",
		KeySlightLeft:    "Tournez légèrement à gauche",
		KeySlightRight:   "Tournez légèrement à droite",
		KeySharpLeft:     "Tournez franchement à gauche",
		KeySharpRight:    "Tournez franchement à droite",
		KeyUTurn:         "Faites demi-tour",
		KeyWalk:          "marchez",
		KeyCycle:         "pédalez",
		KeyDrive:         "roulez",
		KeyOffRoute:      "Vous avez quitté l'itinéraire",
		KeyRouteReplaced: "Itinéraire mis à jour",
		"north":          "nord",
		"northeast":      "nord-est",
		"east":           "est",
		"southeast":      "sud-est",
		"south":          "sud",
		"southwest":      "sud-ouest",
		"west":           "ouest",
		"northwest":      "nord-ouest",
	},
	language.German: {
		KeyHead:          "Richtung %s",
		KeyHeadOn:        "Richtung %s auf %s",
		KeyOnto:          "%s auf %s",
		KeyThen:          "%s, dann %s %s",
		KeyArrive:        "Sie haben Ihr Ziel erreicht",
		KeyStraight:      "Geradeaus weiter",
		KeyTurnLeft:      "Links abbiegen",
		KeyTurnRight:     "Rechts abbiegen",
		KeySlightLeft:    "Leicht links abbiegen",
		KeySlightRight:   "Leicht rechts abbiegen",
		KeySharpLeft:     "Scharf links abbiegen",
		KeySharpRight:    "Scharf rechts abbiegen",
		KeyUTurn:         "Wenden",
		KeyWalk:          "gehen Sie",
		KeyCycle:         "radeln Sie",
		KeyDrive:         "fahren Sie",
		KeyOffRoute:      "Sie haben die Route verlassen",
		KeyRouteReplaced: "Route aktualisiert",
		"north":          "Norden",
		"northeast":      "Nordosten",
		"east":           "Osten",
		"southeast":      "Südosten",
		"south":          "Süden",
		"southwest":      "Südwesten",
		"west":           "Westen",
		"northwest":      "Nordwesten",
	},
	language.Spanish: {
		KeyHead:          "Diríjase al %s",
		KeyHeadOn:        "Diríjase al %s por %s",
		KeyOnto:          "%s hacia %s",
		KeyThen:          "%s, luego %s %s",
		KeyArrive:        "Ha llegado a su destino",
		KeyStraight:      "Siga recto",
		KeyTurnLeft:      "Gire a la izquierda",
		KeyTurnRight:     "Gire a la derecha",
		KeySlightLeft:    "Gire ligeramente a la izquierda",
		KeySlightRight:   "Gire ligeramente a la derecha",
		KeySharpLeft:     "Gire bruscamente a la izquierda",
		KeySharpRight:    "Gire bruscamente a la derecha",
		KeyUTurn:         "Dé la vuelta",
		KeyWalk:          "camine",
		KeyCycle:         "pedalee",
		KeyDrive:         "conduzca",
		KeyOffRoute:      "Se ha salido de la ruta",
		KeyRouteReplaced: "Ruta actualizada",
		"north":          "norte",
		"northeast":      "noreste",
		"east":           "este",
		"southeast":      "sureste",
		"south":          "sur",
		"southwest":      "suroeste",
		"west":           "oeste",
		"northwest":      "noroeste",
	},
}

var (
	builtin = newBuilder()
	matcher = language.NewMatcher(supported)
)

func newBuilder() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("locale: register %q for %s: %v", key, tag, err))
			}
		}
	}
	return b
}

// Catalog is a Translator backed by the built-in message catalog.
type Catalog struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Catalog for the best supported match of lang.
// Empty, malformed or unsupported languages yield English.
func New(lang string) *Catalog {
	tag := language.English
	if parsed, err := language.Parse(lang); err == nil {
		if _, idx, conf := matcher.Match(parsed); conf != language.No {
			tag = supported[idx]
		}
	}

	return &Catalog{tag: tag, printer: message.NewPrinter(tag, message.Catalog(builtin))}
}

// Sprintf implements Translator.
func (c *Catalog) Sprintf(key string, args ...any) string {
	return c.printer.Sprintf(key, args...)
}

// Language implements Translator.
func (c *Catalog) Language() string { return c.tag.String() }

// Supported lists the languages with built-in translations.
func Supported() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		out[i] = t.String()
	}
	return out
}

// Verb returns the localized travel verb for class. Unspecified classes walk.
func Verb(t Translator, class network.VehicleClass) string {
	switch class {
	case network.Cycling:
		return t.Sprintf(KeyCycle)
	case network.Driving:
		return t.Sprintf(KeyDrive)
	default:
		return t.Sprintf(KeyWalk)
	}
}

// Distance formats meters as "120 m" or "1.5 km".
func Distance(t Translator, meters float64) string {
	if meters < 1000 {
		return t.Sprintf(KeyMeters, meters)
	}
	return t.Sprintf(KeyKilometers, meters/1000)
}

// Direction returns the localized name of a cardinal key such as "northeast".
// Unknown keys are returned as given.
func Direction(t Translator, cardinal string) string {
	for _, c := range cardinals {
		if c == cardinal {
			return t.Sprintf(c)
		}
	}
	return cardinal
}
