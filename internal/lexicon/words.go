package lexicon

import (
	"regexp"
	"strings"
)

var stopwords = wordSet(`
	a an the and or but nor of to in on at by for with without from into onto
	over under via per as is are was were be been being am do does did done
	it its it's this that these those there here their them they we our ours
	you your yours he she his her i me my mine us who whom whose which what
	when where why how than then so such too very can could should would
	will shall may might must not no yes also just only more most much many
	some any all each every both either neither other another own same
	out up down off again further once about above below between through
	during before after until while if else because since although though
	has have had having get gets got make makes made use uses used using
	new now etc e.g i.e eg ie via vs
	fast support supports supported provide provides provided feature features
	easy easily simple simply fully full well better best way ways lot lots
	able allow allows allowing enable enables let lets thing things
	`)

var shortTokens = wordSet(`ai ml ui ux db io os ci cd js ts go py qr s3 vm ip id ux`)

var acronyms = wordSet(`
	oauth oauth2 jwt tls ssl grpc graphql cli sso saml ldap csv pdf json yaml
	toml xml html css sql http https ftp sftp ssh smtp imap dns tcp udp mqtt
	amqp rest rpc sdk api cdn gpu cpu ram ssd aws gcp s3 k8s ocr nlp llm rag
	svg png jpeg gif webp mp3 mp4 wasm webhook webhooks websocket websockets
	rbac acl mfa otp totp 2fa oidc cors csrf xss ssr ssg pwa seo i18n l10n
	a11y ai ml ui ux db io os ci cd js ts qr vm ip
	`)

var genericTokens = wordSet(`
	api config handler data file system service tool user option util
	manager module app application core base common main default helper
	process result value type object item element component function method
	class interface model info detail list set map key name path text string
	number input output request response error message event state context
	run start stop test check get update create delete read write load save
	init setup build server client web page view support feature project
	code source line format mode level setting settings level value values
	simple basic new work using custom multiple various
	`)

var genericSymbolNames = wordSet(`
	main init index default handler config utils util helper helpers run
	setup app application start stop test tests constructor render
	module exports get set new create update delete value data item items
	result results options opts args params props state context ctx err
	error errors callback cb fn func handle process execute exec do call
	`)

var instructionalVerbs = wordSet(`
	install run configure set setup add create clone download open navigate
	click copy paste edit change update remove delete use call pass define
	write read see check ensure make try visit enter start stop build deploy
	launch execute specify replace modify follow refer`)

var marketingAdjectives = wordSet(`
	fast blazing blazingly lightning simple lightweight modern powerful robust
	flexible easy small tiny minimal minimalist elegant beautiful intuitive
	scalable reliable performant extensible complete comprehensive
	full-featured opinionated friendly production-ready battle-tested
	open-source free awesome amazing next-generation cutting-edge efficient
	high-performance declarative universal versatile customizable pluggable
	composable clean lean zero-dependency dependency-free delightful
	seamless effortless ultimate best great`)

var productNouns = wordSet(`
	library framework tool toolkit package module app application project
	server client engine platform solution system utility cli service sdk
	wrapper implementation plugin extension bot api collection set suite
	component program script binary crate gem`)

var nonFeatureLabels = wordSet(`
	note notes warning caution important tip tips hint info danger todo
	example examples usage install installation requirements prerequisites
	license author authors status version see also deprecated deprecation
	disclaimer attention question answer q a faq credits thanks
	`)

var inlineFeatureVerbs = []string{
	"supports", "provides", "offers", "includes", "enables", "allows you to",
	"lets you", "comes with", "ships with", "aims to deliver", "aims to provide",
	"aims to support", "adds support for", "now supports",
}

var categoryPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"chart", regexp.MustCompile(`\bcharts?( types?)?\b`)},
	{"plugin", regexp.MustCompile(`\bplugins?\b`)},
	{"scale", regexp.MustCompile(`\bscales?\b`)},
	{"integration", regexp.MustCompile(`\bintegrations?\b`)},
	{"provider", regexp.MustCompile(`\bproviders?\b`)},
	{"adapter", regexp.MustCompile(`\badapters?\b`)},
	{"connector", regexp.MustCompile(`\bconnectors?\b`)},
	{"driver", regexp.MustCompile(`\bdrivers?\b`)},
	{"backend", regexp.MustCompile(`\bbackends?\b`)},
	{"format", regexp.MustCompile(`\b(file )?formats?\b`)},
	{"command", regexp.MustCompile(`\b(sub)?commands?\b`)},
	{"language", regexp.MustCompile(`\blanguages?\b`)},
	{"exporter", regexp.MustCompile(`\bexporters?\b`)},
	{"extension", regexp.MustCompile(`\bextensions?\b`)},
}

// IsStopword reports whether w carries no matching signal
func IsStopword(w string) bool { return stopwords[w] }

// IsShortToken reports whether a 2-letter token is meaningful enough to keep
func IsShortToken(w string) bool { return shortTokens[w] }

// IsAcronym reports whether w is an allow-listed technical acronym
func IsAcronym(w string) bool { return acronyms[w] }

// IsGenericToken reports whether w belongs to the generic vocabulary
func IsGenericToken(w string) bool { return genericTokens[w] }

// IsGenericSymbolName reports whether a lowercased identifier is too generic to match on
func IsGenericSymbolName(name string) bool { return genericSymbolNames[strings.ToLower(name)] }

// IsInstructionalVerb reports whether w opens an imperative instruction
func IsInstructionalVerb(w string) bool { return instructionalVerbs[w] }

// IsMarketingAdjective reports whether w is promotional filler
func IsMarketingAdjective(w string) bool { return marketingAdjectives[w] }

// IsProductNoun reports whether w names the product itself (library, tool, ...)
func IsProductNoun(w string) bool { return productNouns[w] }

// IsNonFeatureLabel reports whether a bold label introduces non-feature content
func IsNonFeatureLabel(label string) bool {
	return nonFeatureLabels[CleanTitle(label)]
}

// InlineFeatureVerbs returns the verb phrases that introduce a capability in prose
func InlineFeatureVerbs() []string {
	out := make([]string, len(inlineFeatureVerbs))
	copy(out, inlineFeatureVerbs)
	return out
}

// Category returns the category named by a heading or path segment, if any
func Category(text string) (string, bool) {
	t := CleanTitle(text)
	if t == "" {
		return "", false
	}
	for _, c := range categoryPatterns {
		if c.re.MatchString(t) {
			return c.name, true
		}
	}
	return "", false
}

func wordSet(s string) map[string]bool {
	m := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		m[w] = true
	}
	return m
}
