package robot

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Sign computes the control API request signature.
//
// The vendor algorithm: sort the business parameters by key ascending, render
// each as "key:value", append time, appkey and apptoken entries in that fixed
// order, join with commas, and MD5 the result as lowercase hex. The counterpart
// service computes the same string, so the exact ordering matters for interop.
func Sign(businessParams map[string]string, timeSec int64, appKey, appToken string) string {
	keys := make([]string, 0, len(businessParams))
	for k := range businessParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+3)
	for _, k := range keys {
		parts = append(parts, k+":"+businessParams[k])
	}
	parts = append(parts,
		fmt.Sprintf("time:%d", timeSec),
		"appkey:"+appKey,
		"apptoken:"+appToken,
	)

	sum := md5.Sum([]byte(strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}
