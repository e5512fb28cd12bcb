// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package envresolver

// builtinProviders is the lowest-priority source in the four-source
// merge: a static table of well-known vendor
// base URLs, seeded so that common ${VAR} templates resolve even when
// a project's .env and config are silent about them.
var builtinProviders = map[string]string{
	"STRIPE_API_BASE":       "https://api.stripe.com",
	"GITHUB_API_BASE":       "https://api.github.com",
	"TWILIO_API_BASE":       "https://api.twilio.com",
	"SENDGRID_API_BASE":     "https://api.sendgrid.com",
	"SLACK_API_BASE":        "https://slack.com/api",
	"OPENAI_API_BASE":       "https://api.openai.com",
	"AWS_S3_ENDPOINT":       "https://s3.amazonaws.com",
	"PLAID_API_BASE":        "https://production.plaid.com",
	"MAILGUN_API_BASE":      "https://api.mailgun.net",
}
