package api

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/dmitrijs2005/singularity/internal/server/models"
)

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	p, err := r.Profiles.Me(ctx)
	if err != nil {
		return nil, r.publicError(ctx, "me", err)
	}
	return &userResolver{u: p.User, docs: p.Documents, contacts: p.Contacts, catalog: r.Catalog}, nil
}

func (r *Resolver) AllCountries(ctx context.Context) ([]*countryResolver, error) {
	list, err := r.Catalog.Countries(ctx)
	if err != nil {
		return nil, r.publicError(ctx, "allCountries", err)
	}
	out := make([]*countryResolver, len(list))
	for i := range list {
		out[i] = &countryResolver{c: list[i]}
	}
	return out, nil
}

func (r *Resolver) AllDocumentTypes(ctx context.Context) ([]*documentTypeResolver, error) {
	list, err := r.Catalog.DocumentTypes(ctx)
	if err != nil {
		return nil, r.publicError(ctx, "allDocumentTypes", err)
	}
	out := make([]*documentTypeResolver, len(list))
	for i := range list {
		out[i] = &documentTypeResolver{dt: list[i]}
	}
	return out, nil
}

func (r *Resolver) CountryByID(ctx context.Context, args struct{ ID graphql.ID }) (*countryResolver, error) {
	id, err := parseID("country", args.ID)
	if err != nil {
		return nil, r.publicError(ctx, "countryById", err)
	}
	c, err := r.Catalog.Country(ctx, id)
	if err != nil {
		return nil, r.publicError(ctx, "countryById", err)
	}
	if c == nil {
		return nil, nil
	}
	return &countryResolver{c: *c}, nil
}

func (r *Resolver) DocumentTypeByID(ctx context.Context, args struct{ ID graphql.ID }) (*documentTypeResolver, error) {
	id, err := parseID("document_type", args.ID)
	if err != nil {
		return nil, r.publicError(ctx, "documentTypeById", err)
	}
	dt, err := r.Catalog.DocumentType(ctx, id)
	if err != nil {
		return nil, r.publicError(ctx, "documentTypeById", err)
	}
	if dt == nil {
		return nil, nil
	}
	return &documentTypeResolver{dt: *dt}, nil
}

type auditEntriesArgs struct {
	ActorID      *graphql.ID
	Action       *string
	ResourceType *string
	From         *graphql.Time
	To           *graphql.Time
	Limit        *int32
}

func (r *Resolver) AuditEntries(ctx context.Context, args auditEntriesArgs) ([]*auditEntryResolver, error) {
	f := models.AuditFilter{
		Action:       models.AuditAction(optString(args.Action)),
		ResourceType: optString(args.ResourceType),
		From:         optTime(args.From),
		To:           optTime(args.To),
	}
	if args.ActorID != nil {
		f.ActorID = string(*args.ActorID)
	}
	if args.Limit != nil {
		f.Limit = int(*args.Limit)
	}

	list, err := r.Audit.Entries(ctx, f)
	if err != nil {
		return nil, r.publicError(ctx, "auditEntries", err)
	}
	out := make([]*auditEntryResolver, len(list))
	for i := range list {
		out[i] = &auditEntryResolver{e: list[i]}
	}
	return out, nil
}
