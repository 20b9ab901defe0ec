// Package httpapp provides the HTTP server for Inkwell.
//
//	@title						Inkwell API
//	@version					1.0
//	@description				A multi-user blog backend: accounts, posts and comments over JSON.
//	@description
//	@description				## Authentication Flow
//	@description
//	@description				Write operations require a bearer token. Register once, then log in
//	@description				to obtain a token:
//	@description
//	@description				```bash
//	@description				curl -X POST /users/register -d '{"username":"ada","email":"ada@example.com","password":"s3cret"}'
//	@description				curl -X POST /users/login -d '{"email":"ada@example.com","password":"s3cret"}'
//	@description				# Returns: {"token": "TOKEN"}
//	@description				```
//	@description
//	@description				Include the token in authenticated requests:
//	@description				```bash
//	@description				curl -X POST /posts -H "Authorization: Bearer TOKEN" -d '{"title":"...","content":"..."}'
//	@description				```
//
//	@contact.name				Inkwell
//	@license.name				MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /users/login
//
//	@tag.name					Users
//	@tag.description			Account registration, login and the current-user lookup.
//
//	@tag.name					Posts
//	@tag.description			Create, browse, update and delete blog posts. Updates and deletes are restricted to the author (deletes also to admins).
//
//	@tag.name					Comments
//	@tag.description			Flat comments attached to a post id.
//
//	@tag.name					Admin
//	@tag.description			Administrative endpoints. Requires a token whose account has the admin flag.
package httpapp
