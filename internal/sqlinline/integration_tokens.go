package sqlinline

// QSelectIntegrationToken returns the token and its optional store scope.
const QSelectIntegrationToken = `--sql f133f783-8b72-4158-9627-5dd8dbbd3245
select token,
       coalesce(properties->>'store_id', '') as store_id
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql af1478fe-4d6c-4e03-af7f-fb81411b85fe
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
