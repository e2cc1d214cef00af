// Package config loads the CLI-level settings for rlectl: the logging
// level, an optional link-profile file, and the RLE policy options
// that feed rle.NewConfig.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mellowdrifter/rle/rle"
)

// Profile is the on-disk (YAML) shape of a link policy. It mirrors
// rle.Config field-for-field, except the reserved
// UseExplicitPayloadHeaderMap, which it has no field for, so a
// deployment can check a named profile
// into version control instead of passing a dozen flags.
type Profile struct {
	AllowPtypeOmission       bool  `yaml:"allow_ptype_omission"`
	UseCompressedPtype       bool  `yaml:"use_compressed_ptype"`
	AllowALPDUCRC            bool  `yaml:"allow_alpdu_crc"`
	AllowALPDUSequenceNumber bool  `yaml:"allow_alpdu_sequence_number"`
	ImplicitProtocolType     uint8 `yaml:"implicit_protocol_type"`
	ImplicitPPDULabelSize    uint8 `yaml:"implicit_ppdu_label_size"`
	ImplicitPayloadLabelSize uint8 `yaml:"implicit_payload_label_size"`
	Type0ALPDULabelSize      uint8 `yaml:"type_0_alpdu_label_size"`
}

// Config is the fully resolved configuration for cmd/rlectl.
type Config struct {
	LogLevel    string
	BurstBudget int
	Profile     Profile
}

// Load reads CLI flags, optionally overlaying a YAML profile named by
// --profile, and returns the resolved Config. CLI flags explicitly set
// by the caller take precedence over the profile file, matching the
// teacher's "CLI flags take highest priority" policy.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("rlectl", pflag.ContinueOnError)

	logLevel := fs.String("loglevel", "info", "log level (debug, info, warn, error)")
	profilePath := fs.String("profile", "", "path to a YAML link-profile file")
	burstBudget := fs.Int("burst-budget", 500, "bytes available to each PPDU burst")

	allowOmission := fs.Bool("allow-ptype-omission", false, "permit suppressing the protocol-type header")
	useCompressed := fs.Bool("use-compressed-ptype", true, "use the compressed protocol-type encoding")
	allowCRC := fs.Bool("allow-alpdu-crc", false, "permit the 32-bit CRC trailer")
	allowSeqno := fs.Bool("allow-alpdu-seqno", true, "permit the 1-byte sequence-number trailer")
	implicitPtype := fs.Uint8("implicit-protocol-type", 0x0d, "default protocol type used when the header is omitted")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:    *logLevel,
		BurstBudget: *burstBudget,
		Profile: Profile{
			AllowPtypeOmission:       *allowOmission,
			UseCompressedPtype:       *useCompressed,
			AllowALPDUCRC:            *allowCRC,
			AllowALPDUSequenceNumber: *allowSeqno,
			ImplicitProtocolType:     *implicitPtype,
		},
	}

	if *profilePath != "" {
		overlay, err := loadProfile(*profilePath)
		if err != nil {
			return nil, fmt.Errorf("config: loading profile %q: %w", *profilePath, err)
		}
		if !fs.Changed("allow-ptype-omission") {
			cfg.Profile.AllowPtypeOmission = overlay.AllowPtypeOmission
		}
		if !fs.Changed("use-compressed-ptype") {
			cfg.Profile.UseCompressedPtype = overlay.UseCompressedPtype
		}
		if !fs.Changed("allow-alpdu-crc") {
			cfg.Profile.AllowALPDUCRC = overlay.AllowALPDUCRC
		}
		if !fs.Changed("allow-alpdu-seqno") {
			cfg.Profile.AllowALPDUSequenceNumber = overlay.AllowALPDUSequenceNumber
		}
		if !fs.Changed("implicit-protocol-type") {
			cfg.Profile.ImplicitProtocolType = overlay.ImplicitProtocolType
		}
		cfg.Profile.ImplicitPPDULabelSize = overlay.ImplicitPPDULabelSize
		cfg.Profile.ImplicitPayloadLabelSize = overlay.ImplicitPayloadLabelSize
		cfg.Profile.Type0ALPDULabelSize = overlay.Type0ALPDULabelSize
	}

	return cfg, nil
}

func loadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// RLEConfig builds the validated rle.Config this Profile describes.
func (c *Config) RLEConfig() (*rle.Config, error) {
	p := c.Profile
	return rle.NewConfig(
		rle.WithPtypeOmission(p.AllowPtypeOmission),
		rle.WithCompressedPtype(p.UseCompressedPtype),
		rle.WithALPDUCRC(p.AllowALPDUCRC),
		rle.WithALPDUSequenceNumber(p.AllowALPDUSequenceNumber),
		rle.WithImplicitProtocolType(p.ImplicitProtocolType),
		rle.WithLabelSizes(p.ImplicitPPDULabelSize, p.ImplicitPayloadLabelSize, p.Type0ALPDULabelSize),
	)
}
