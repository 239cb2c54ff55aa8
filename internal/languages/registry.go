package languages

import "fmt"

// Entry maps a display name onto the identifiers the translation and
// synthesis capabilities understand.
type Entry struct {
	DisplayName    string
	TranslationTag string
	VoiceID        string
}

// UnknownLanguageError reports a display name that is not registered.
type UnknownLanguageError struct {
	Name string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("unknown language %q", e.Name)
}

// Registry is an immutable display-name lookup table. The zero value is not
// usable; construct one with NewRegistry or use Default.
type Registry struct {
	order   []string
	entries map[string]Entry
}

func NewRegistry(entries []Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if e.DisplayName == "" || e.TranslationTag == "" || e.VoiceID == "" {
			return nil, fmt.Errorf("malformed language entry %+v", e)
		}
		if _, dup := r.entries[e.DisplayName]; dup {
			return nil, fmt.Errorf("duplicate language entry %q", e.DisplayName)
		}
		r.order = append(r.order, e.DisplayName)
		r.entries[e.DisplayName] = e
	}
	return r, nil
}

// Resolve returns the entry for a display name.
func (r *Registry) Resolve(name string) (Entry, error) {
	entry, ok := r.entries[name]
	if !ok {
		return Entry{}, &UnknownLanguageError{Name: name}
	}
	return entry, nil
}

// Names returns display names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Default returns the built-in Indic language table. The NLLB-style
// translation tags and the synthesis voice ids are fixed pairs; Assamese and
// Sanskrit reuse the closest available voice.
func Default() *Registry {
	r, err := NewRegistry([]Entry{
		{DisplayName: "English", TranslationTag: "eng_Latn", VoiceID: "en-IN-NeerjaNeural"},
		{DisplayName: "Hindi", TranslationTag: "hin_Deva", VoiceID: "hi-IN-SwaraNeural"},
		{DisplayName: "Bengali", TranslationTag: "ben_Beng", VoiceID: "bn-IN-TanishaaNeural"},
		{DisplayName: "Marathi", TranslationTag: "mar_Deva", VoiceID: "mr-IN-AarohiNeural"},
		{DisplayName: "Tamil", TranslationTag: "tam_Taml", VoiceID: "ta-IN-PallaviNeural"},
		{DisplayName: "Telugu", TranslationTag: "tel_Telu", VoiceID: "te-IN-ShrutiNeural"},
		{DisplayName: "Gujarati", TranslationTag: "guj_Gujr", VoiceID: "gu-IN-DhwaniNeural"},
		{DisplayName: "Kannada", TranslationTag: "kan_Knda", VoiceID: "kn-IN-SapnaNeural"},
		{DisplayName: "Malayalam", TranslationTag: "mal_Mlym", VoiceID: "ml-IN-SobhanaNeural"},
		{DisplayName: "Punjabi", TranslationTag: "pan_Guru", VoiceID: "pa-IN-OjasNeural"},
		{DisplayName: "Urdu", TranslationTag: "urd_Arab", VoiceID: "ur-PK-UzmaNeural"},
		{DisplayName: "Assamese", TranslationTag: "asm_Beng", VoiceID: "bn-IN-TanishaaNeural"},
		{DisplayName: "Sanskrit", TranslationTag: "san_Deva", VoiceID: "hi-IN-SwaraNeural"},
	})
	if err != nil {
		panic(err)
	}
	return r
}
