/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package hbos

// ndpiRiskShortnames maps a risk bit position to its short name. Captured
// verbatim (including original typos) from
// original_source/gnat/src/model/histogram/histogram_model.rs so that
// risk lists emitted by this port byte-for-byte match the original.
var ndpiRiskShortnames = [57]string{
	"none",                     // NDPI_NO_RISK
	"possible xss",             // NDPI_URL_POSSIBLE_XSS
	"possible sql injection",   // NDPI_URL_POSSIBLE_SQL_INJECTION
	"possible rce injection",   // NDPI_URL_POSSIBLE_RCE_INJECTION
	"binary transfer",          // NDPI_BINARY_APPLICATION_TRANSFER
	"non standard port",        // NDPI_KNOWN_PROTOCOL_ON_NON_STANDARD_PORT
	"tls selfsigned cert",      // NDPI_TLS_SELFSIGNED_CERTIFICATE
	"tls obsolete ver",         // NDPI_TLS_OBSOLETE_VERSION
	"tls weak cipher",          // NDPI_TLS_WEAK_CIPHER
	"tls cert expired",         // NDPI_TLS_CERTIFICATE_EXPIRED
	"tls cert mismatch",        // NDPI_TLS_CERTIFICATE_MISMATCH
	"suspicous user agent",     // NDPI_HTTP_SUSPICIOUS_USER_AGENT
	"numeric ip host",          // NDPI_NUMERIC_IP_HOST
	"http suspicious url",      // NDPI_HTTP_SUSPICIOUS_URL
	"http suspicious header",   // NDPI_HTTP_SUSPICIOUS_HEADER
	"tls not https",            // NDPI_TLS_NOT_CARRYING_HTTPS
	"suspicious dga",           // NDPI_SUSPICIOUS_DGA_DOMAIN
	"malformed pkt",            // NDPI_MALFORMED_PACKET
	"ssh obsolete client",      // NDPI_SSH_OBSOLETE_CLIENT_VERSION_OR_CIPHER
	"ssh obsolete server",      // NDPI_SSH_OBSOLETE_SERVER_VERSION_OR_CIPHER
	"smb insecure ver",         // NDPI_SMB_INSECURE_VERSION
	"free21",                   // NDPI_FREE_21
	"unsafe_proto",             // NDPI_UNSAFE_PROTOCOL
	"dns_susp",                 // NDPI_DNS_SUSPICIOUS_TRAFFIC
	"tls_no_sni",               // NDPI_TLS_MISSING_SNI
	"http suspicous content",   // NDPI_HTTP_SUSPICIOUS_CONTENT
	"risky asn",                // NDPI_RISKY_ASN
	"risky domain",             // NDPI_RISKY_DOMAIN
	"malicious fingerprint",    // NDPI_MALICIOUS_FINGERPRINT
	"malicious cert",           // NDPI_MALICIOUS_SHA1_CERTIFICATE
	"desktop sharing",          // NDPI_DESKTOP_OR_FILE_SHARING_SESSION
	"tls uncommon alpn",        // NDPI_TLS_UNCOMMON_ALPN
	"tls cert too long",        // NDPI_TLS_CERT_VALIDITY_TOO_LONG
	"tls susp ext",             // NDPI_TLS_SUSPICIOUS_EXTENSION
	"tls_fatal error",          // NDPI_TLS_FATAL_ALERT
	"suspicous entropy",        // NDPI_SUSPICIOUS_ENTROPY
	"clear_credential",         // NDPI_CLEAR_TEXT_CREDENTIALS
	"dns large pkt",            // NDPI_DNS_LARGE_PACKET
	"dns_ ragmented",           // NDPI_DNS_FRAGMENTED
	"invalid characters",       // NDPI_INVALID_CHARACTERS
	"possible exploit",         // NDPI_POSSIBLE_EXPLOIT
	"tls cert about to_expire", // NDPI_TLS_CERTIFICATE_ABOUT_TO_EXPIRE
	"punycode",                 // NDPI_PUNYCODE_IDN
	"error code",               // NDPI_ERROR_CODE_DETECTED
	"crawler bot",              // NDPI_HTTP_CRAWLER_BOT
	"anonymous subscriber",     // NDPI_ANONYMOUS_SUBSCRIBER
	"unidirectional",           // NDPI_UNIDIRECTIONAL_TRAFFIC
	"htt obsolete server",      // NDPI_HTTP_OBSOLETE_SERVER
	"periodic flow",            // NDPI_PERIODIC_FLOW
	"minor issues",             // NDPI_MINOR_ISSUES
	"tcp issues",               // NDPI_TCP_ISSUES
	"free51",                   // NDPI_FREE_51
	"tls alpn mismatch",        // NDPI_TLS_ALPN_SNI_MISMATCH
	"malware host",             // NDPI_MALWARE_HOST_CONTACTED
	"binary data transfer",     // NDPI_BINARY_DATA_TRANSFER
	"probing",                  // NDPI_PROBING_ATTEMPT
	"obfuscated",               // NDPI_OBFUSCATED_TRAFFIC
}

// RiskNameByIndex returns the short name for a risk bit position, or
// "unknown" if index is out of range.
func RiskNameByIndex(index int) string {
	if index >= 0 && index < len(ndpiRiskShortnames) {
		return ndpiRiskShortnames[index]
	}
	return "unknown"
}

// RiskNames expands a risk-bit mask into its set of short names, bit i ->
// RiskNameByIndex(i).
func RiskNames(riskBits uint64) []string {
	var names []string
	for i := 0; i < 64; i++ {
		if riskBits&(1<<uint(i)) != 0 {
			names = append(names, RiskNameByIndex(i))
		}
	}
	return names
}
