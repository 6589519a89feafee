/*
Package ddns keeps a single Cloudflare DNS A record pointed at the current public IPv4 address of the host.

Usage will always start with [ddns.New],
which returns the DDNSClient implementation.
New requires the [Settings] for the zone and record to manage.
Additional client configuration options are listed in the docs for New.

A run discovers the public address, fetches the existing record and compares the two.
The record is only written when the addresses differ,
so it is safe to call [DDNSClient.RunDDNS] from a scheduler as often as you like.
*/
package ddns
