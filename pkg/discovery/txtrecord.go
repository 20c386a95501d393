package discovery

import (
	"fmt"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeCompanionTXT creates TXT records for companion bridge discovery.
func EncodeCompanionTXT(info *CompanionInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyPubkeyPrefix] = info.PubkeyPrefix
	txt[TXTKeyNodeName] = info.NodeName
	txt[TXTKeyFrameVersion] = info.FrameVersion

	if info.Firmware != "" {
		txt[TXTKeyFirmware] = info.Firmware
	}
	if info.Model != "" {
		txt[TXTKeyModel] = info.Model
	}

	return txt
}

// DecodeCompanionTXT parses TXT records from companion bridge discovery into
// a CompanionService. Host/Port/Addresses are left zero; callers fill those
// in from the mDNS service entry.
func DecodeCompanionTXT(txt TXTRecordMap) (*CompanionService, error) {
	svc := &CompanionService{}

	var ok bool
	svc.PubkeyPrefix, ok = txt[TXTKeyPubkeyPrefix]
	if !ok || len(svc.PubkeyPrefix) != PubkeyPrefixLen || !isHexString(svc.PubkeyPrefix) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPubkeyPrefix, TXTKeyPubkeyPrefix)
	}

	svc.NodeName, ok = txt[TXTKeyNodeName]
	if !ok || svc.NodeName == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyNodeName)
	}

	svc.FrameVersion, ok = txt[TXTKeyFrameVersion]
	if !ok || svc.FrameVersion == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyFrameVersion)
	}

	svc.Firmware = txt[TXTKeyFirmware]
	svc.Model = txt[TXTKeyModel]

	return svc, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings.
// This format is commonly used by mDNS libraries.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
