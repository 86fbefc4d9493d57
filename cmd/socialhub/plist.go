package main

import (
	"fmt"
	"html"
)

const launchAgentLabel = "com.social-hub.daemon"

// launchAgentPlist renders the LaunchAgent that keeps "socialhub daemon"
// running for the logged-in user.
func launchAgentPlist(binary, configFile, logPath string) string {
	args := fmt.Sprintf("        <string>%s</string>\n        <string>daemon</string>\n", html.EscapeString(binary))
	if configFile != "" {
		args += fmt.Sprintf("        <string>--config</string>\n        <string>%s</string>\n", html.EscapeString(configFile))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
%s    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>%s</string>
    <key>StandardErrorPath</key>
    <string>%s</string>
</dict>
</plist>
`, launchAgentLabel, args, html.EscapeString(logPath), html.EscapeString(logPath))
}
