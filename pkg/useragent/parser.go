package useragent

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Parser classifies User-Agent strings into the device buckets the
// reporting queries group by: mobile, tablet, desktop, bot, unknown.
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// UserAgentInfo is the parsed result attached to collected events
type UserAgentInfo struct {
	DeviceType string // mobile, tablet, desktop, bot, unknown
	Browser    string
	OS         string
}

var (
	globalParser *Parser
	once         sync.Once
)

// NewParser loads the uap-core regexes file and builds a parser
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file %s: %w", regexFilePath, err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// InitGlobalParser initializes the process-wide parser instance
func InitGlobalParser(regexFilePath string, log *zap.Logger) error {
	var err error
	once.Do(func() {
		globalParser, err = NewParser(regexFilePath, log)
	})
	return err
}

// GetGlobalParser returns the process-wide parser, nil if never initialized
func GetGlobalParser() *Parser {
	return globalParser
}

// ParseUserAgent parses a User-Agent string into device info
func (p *Parser) ParseUserAgent(userAgent string) *UserAgentInfo {
	if userAgent == "" {
		return &UserAgentInfo{DeviceType: "unknown", Browser: "unknown", OS: "unknown"}
	}

	client := p.parser.Parse(userAgent)

	info := &UserAgentInfo{
		Browser:    orUnknown(client.UserAgent.Family),
		OS:         orUnknown(client.Os.Family),
		DeviceType: deviceType(client, userAgent),
	}

	p.log.Debug("parsed User-Agent",
		zap.String("device_type", info.DeviceType),
		zap.String("browser", info.Browser),
		zap.String("os", info.OS),
	)

	return info
}

// deviceType buckets a parsed client. Bots are checked first so that
// crawler impressions never pollute the device breakdown.
func deviceType(client *uaparser.Client, userAgent string) string {
	if isBot(client.UserAgent.Family) || isBot(userAgent) {
		return "bot"
	}

	os := client.Os.Family
	switch {
	case containsFold(os, "iOS"):
		if containsFold(userAgent, "iPad") {
			return "tablet"
		}
		return "mobile"
	case containsFold(os, "Android"):
		// Android tablets omit "Mobile" from the User-Agent
		if !containsFold(userAgent, "Mobile") {
			return "tablet"
		}
		return "mobile"
	case containsFold(os, "Windows Phone"), containsFold(os, "BlackBerry"):
		return "mobile"
	}

	device := client.Device.Family
	if device != "" && device != "Other" {
		if containsFold(device, "iPad") || containsFold(device, "Tablet") || containsFold(device, "Kindle") {
			return "tablet"
		}
		if containsFold(device, "iPhone") || containsFold(device, "Phone") || containsFold(device, "Mobile") {
			return "mobile"
		}
	}

	for _, desktop := range []string{"Windows", "Mac OS X", "macOS", "Linux", "Ubuntu", "Chrome OS", "FreeBSD"} {
		if containsFold(os, desktop) {
			return "desktop"
		}
	}

	return "unknown"
}

var botMarkers = []string{
	"bot", "crawler", "spider", "scraper",
	"Googlebot", "Bingbot", "Slurp", "DuckDuckBot", "YandexBot",
	"facebookexternalhit", "Twitterbot", "LinkedInBot",
	"WhatsApp", "Telegram",
}

func isBot(s string) bool {
	for _, marker := range botMarkers {
		if containsFold(s, marker) {
			return true
		}
	}
	return false
}

// FallbackDeviceType gives a coarse device bucket without the regexes
// file, used when the global parser was never initialized.
func FallbackDeviceType(userAgent string) string {
	switch {
	case isBot(userAgent):
		return "bot"
	case containsFold(userAgent, "iPad"),
		containsFold(userAgent, "Android") && !containsFold(userAgent, "Mobile"):
		return "tablet"
	case containsFold(userAgent, "Mobile"), containsFold(userAgent, "iPhone"), containsFold(userAgent, "Android"):
		return "mobile"
	case containsFold(userAgent, "Windows"), containsFold(userAgent, "Macintosh"), containsFold(userAgent, "Linux"):
		return "desktop"
	default:
		return "unknown"
	}
}

func containsFold(s, substr string) bool {
	if s == "" || substr == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func orUnknown(s string) string {
	if s == "" || s == "Other" {
		return "unknown"
	}
	return s
}
