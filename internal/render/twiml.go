package render

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	callGreeting = "Hello from your daily Bible verse app!"
	callLeadIn   = "Here is your verse for today:"
	callClosing  = "Have a blessed day!"
)

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlPause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// CallScript renders the TwiML document spoken during an outbound call.
func CallScript(spokenText string) (string, error) {
	doc := twimlResponse{
		Verbs: []any{
			twimlSay{Text: callGreeting},
			twimlPause{Length: 1},
			twimlSay{Text: callLeadIn},
			twimlPause{Length: 1},
			twimlSay{Text: spokenText},
			twimlSay{Text: callClosing},
		},
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal twiml")
	}
	return xml.Header + string(body), nil
}

// WriteCallScript writes the TwiML for one recipient and returns its path.
// The filename embeds the phone number so concurrent deliveries never clash.
func WriteCallScript(dir, phoneNumber, spokenText string) (string, error) {
	content, err := CallScript(spokenText)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create artifact dir")
	}

	path := filepath.Join(dir, fmt.Sprintf("twiml_verse_%s.xml", phoneNumber))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write twiml file")
	}
	return path, nil
}
